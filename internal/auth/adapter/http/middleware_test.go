package http_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "stashbox/internal/auth/adapter/http"
	"stashbox/internal/auth/domain/repository"
	"stashbox/internal/auth/usecase"
	"stashbox/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockAuthUsecase
	middleware *authhttp.AuthMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.mockUC = &mockAuthUsecase{}
	suite.middleware = authhttp.NewAuthMiddleware(suite.mockUC)
	suite.app = fiber.New()

	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		uid, err := utils.GetUserUIDFromContext(c.UserContext())
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"user_uid": uid})
	})
}

func (suite *MiddlewareTestSuite) TestProtect_Success() {
	// Arrange
	claims := &repository.Claims{UserUID: 42}
	suite.mockUC.On("VerifyAccessToken", mock.Anything, "valid-token").Return(claims, nil)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer valid-token")

	// Act
	resp, err := suite.app.Test(req)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestProtect_InvalidToken() {
	// Arrange
	suite.mockUC.On("VerifyAccessToken", mock.Anything, "bad-token").
		Return(nil, usecase.ErrInvalidToken)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer bad-token")

	// Act
	resp, err := suite.app.Test(req)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))
}

func (suite *MiddlewareTestSuite) TestProtect_MalformedHeaders() {
	headers := []string{
		"",
		"Bearer ",
		"Basic dXNlcjpwYXNz",
		"valid-token",
	}

	for i, header := range headers {
		suite.Run(fmt.Sprintf("header_%d", i), func() {
			req := httptest.NewRequest("GET", "/protected", nil)
			if header != "" {
				req.Header.Set(fiber.HeaderAuthorization, header)
			}

			resp, err := suite.app.Test(req)

			require.NoError(suite.T(), err)
			assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
		})
	}

	suite.mockUC.AssertNotCalled(suite.T(), "VerifyAccessToken")
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
