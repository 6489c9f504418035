package model

// Item is a thin inventory row. PlaceUID references a place owned by the same
// user; nil means the item is unplaced.
type Item struct {
	UID          int64    `json:"uid" bson:"_id"`
	Name         string   `json:"name" bson:"name"`
	Description  *string  `json:"description" bson:"description,omitempty"`
	Price        *float64 `json:"price" bson:"price,omitempty"`
	CurrencyCode *string  `json:"currency_code" bson:"currency_code,omitempty"`
	Quantity     int64    `json:"quantity" bson:"quantity"`
	PlaceUID     *int64   `json:"place_uid" bson:"place_uid,omitempty"`
	OwnerUID     int64    `json:"-" bson:"owner_uid"`
}
