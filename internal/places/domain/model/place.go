package model

// Place is a node in a per-owner forest. ParentUID is a self-reference; nil
// means the node is a root. The parent edge is only ever created after the
// acting user has been verified to own both endpoints.
type Place struct {
	UID       int64  `json:"uid" bson:"_id"`
	Name      string `json:"name" bson:"name"`
	ParentUID *int64 `json:"parent_uid" bson:"parent_uid,omitempty"`
	OwnerUID  int64  `json:"-" bson:"owner_uid"`
}
