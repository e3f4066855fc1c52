package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
)

// fixedMetrics reports one scripted value for every lookup.
type fixedMetrics struct {
	value float64
}

func (f *fixedMetrics) GetMetric(userID string, action models.ActionType, metric models.MetricKind, descriptor string, tenantID string) (float64, error) {
	return f.value, nil
}

var handlerDBSeq int64

func setupHandlerTest(t *testing.T, source *fixedMetrics) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&handlerDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Reward{}, &models.RewardTask{},
		&models.Badge{}, &models.UserBadge{},
		&models.Activity{}, &models.ActivityHistory{}, &models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	InitServices(db, source)
	return db
}

// testRouter wires the handlers behind a stub auth layer that trusts the
// X-User-Id header, standing in for the JWT middleware.
func testRouter() *gin.Engine {
	r := gin.New()
	auth := func(c *gin.Context) {
		if id := c.GetHeader("X-User-Id"); id != "" {
			c.Set("userId", id)
			c.Set("tenantId", c.GetHeader("X-Tenant-Id"))
		}
		c.Next()
	}
	r.POST("/ledger/evaluate", auth, EvaluateAction)
	r.GET("/users/:id/points", auth, GetUserPoints)
	r.GET("/users/:id/activity", auth, GetUserActivityHistory)
	r.GET("/leaderboard", GetLeaderboard)
	r.POST("/admin/verifications/:id/resolve", auth, ResolveVerification)
	r.GET("/admin/verifications", auth, ListPendingVerifications)
	return r
}

func doJSON(r *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEvaluateEndpoint_FullFlow(t *testing.T) {
	source := &fixedMetrics{value: 12000}
	db := setupHandlerTest(t, source)
	router := testRouter()

	user := models.User{ID: "flow-user", Name: "Flow User", Email: "flow@alumni.example", Role: models.RoleAlumni}
	assert.NoError(t, db.Create(&user).Error)

	reward := models.Reward{
		Name:     "Super Donor",
		Category: "giving",
		IsActive: true,
		Tasks: []models.RewardTask{
			{Title: "Donate $10,000", ActionType: models.ActionDonation, Metric: models.MetricAmount, Target: 10000, Points: 50},
		},
	}
	assert.NoError(t, db.Create(&reward).Error)

	// Unauthorized without an identity
	w := doJSON(router, http.MethodPost, "/ledger/evaluate", "", gin.H{"actionType": "DONATION"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing body
	w = doJSON(router, http.MethodPost, "/ledger/evaluate", user.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Successful evaluation earns the reward
	w = doJSON(router, http.MethodPost, "/ledger/evaluate", user.ID, gin.H{"actionType": "DONATION"})
	assert.Equal(t, http.StatusOK, w.Code)

	var evalResp struct {
		Count      int               `json:"count"`
		Activities []models.Activity `json:"activities"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &evalResp))
	assert.Equal(t, 1, evalResp.Count)
	assert.Equal(t, models.ActivityEarned, evalResp.Activities[0].Status)

	// Points endpoint reflects the credit
	w = doJSON(router, http.MethodGet, "/users/flow-user/points", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var totals struct {
		TotalPoints int    `json:"totalPoints"`
		Tier        string `json:"tier"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
	assert.Equal(t, 50, totals.TotalPoints)
	assert.Equal(t, "BRONZE", totals.Tier)

	// Activity history shows the earn event
	w = doJSON(router, http.MethodGet, "/users/flow-user/activity", user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Super Donor")

	// Public leaderboard includes the user
	w = doJSON(router, http.MethodGet, "/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flow-user")
}

func TestVerificationEndpoints(t *testing.T) {
	source := &fixedMetrics{value: 5}
	db := setupHandlerTest(t, source)
	router := testRouter()

	user := models.User{ID: "ver-user", Name: "Ver User", Email: "ver@alumni.example", Role: models.RoleAlumni}
	staff := models.User{ID: "ver-staff", Name: "Ver Staff", Email: "staff@alumni.example", Role: models.RoleStaff}
	assert.NoError(t, db.Create(&user).Error)
	assert.NoError(t, db.Create(&staff).Error)

	reward := models.Reward{
		Name:     "Mentor Drive",
		IsActive: true,
		Tasks: []models.RewardTask{
			{Title: "Mentor 5 students", ActionType: models.ActionMentorship, Metric: models.MetricCount, Target: 5, Points: 100, RequiresVerification: true},
		},
	}
	assert.NoError(t, db.Create(&reward).Error)

	w := doJSON(router, http.MethodPost, "/ledger/evaluate", user.ID, gin.H{"actionType": "MENTORSHIP"})
	assert.Equal(t, http.StatusOK, w.Code)

	// The queue lists the held activity
	w = doJSON(router, http.MethodGet, "/admin/verifications", staff.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items []models.Activity `json:"items"`
		Total int64             `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	activityID := page.Items[0].ID

	// Malformed activity ids cannot exist and are rejected up front
	w = doJSON(router, http.MethodPost, "/admin/verifications/not-a-uuid/resolve", staff.ID, gin.H{"action": "APPROVE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Approve credits the points
	w = doJSON(router, http.MethodPost, "/admin/verifications/"+activityID+"/resolve", staff.ID, gin.H{"action": "APPROVE"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/users/ver-user/points", staff.ID, nil)
	assert.Contains(t, w.Body.String(), `"totalPoints":100`)

	// A repeat resolution conflicts
	w = doJSON(router, http.MethodPost, "/admin/verifications/"+activityID+"/resolve", staff.ID, gin.H{"action": "REJECT"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondError_UnclassifiedBecomesRetryable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, apperrors.NotFound("Activity not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A raw driver error carries the retry signal, not a bare 500
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondError(c, errors.New("database is locked"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "retry")
}
