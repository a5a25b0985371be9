package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuditLog_ItemUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	done := make(chan *domain.AuditLog, 1)
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLog) { done <- entry },
	)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.PUT("/items", func(c *gin.Context) {
		c.Set(CtxUsername, "operator")
		c.Set(CtxAuditResource, "A1")
		c.JSON(http.StatusOK, gin.H{"productId": "A1", "price": 1.5})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case entry := <-done:
		assert.Equal(t, domain.AuditActionItemUpsert, entry.Action)
		assert.Equal(t, "item", entry.ResourceType)
		assert.Equal(t, "A1", entry.ResourceID)
		if assert.NotNil(t, entry.Username) {
			assert.Equal(t, "operator", *entry.Username)
		}
		assert.Contains(t, entry.Details, `"status":200`)
	case <-time.After(time.Second):
		t.Fatal("audit not called")
	}
}

func TestAuditLog_ResetIsAuditedDespiteGET(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLog) {
			assert.Equal(t, domain.AuditActionReset, entry.Action)
			assert.Nil(t, entry.Username)
		},
	)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.GET("/reset", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reset", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuditLog_SkipsReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)
	// No expectations: GET /deposit is not audited.

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.GET("/deposit", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"deposit": "0.00"}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deposit", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)
	// No expectations: failed purchases are not audited as purchases.

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/buy", func(c *gin.Context) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error_code": "VND_001"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/buy", nil))
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}
