// Package testutil provides an in-memory database, fixtures and HTTP helpers
// shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acqplan/internal/access"
	"acqplan/internal/database"
	"acqplan/internal/model"
	"acqplan/internal/workflow"
)

const JWTSecret = "test-jwt-secret"

// NewDB opens a private in-memory SQLite database with every model migrated.
// A single connection keeps the database alive and serializes transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// CreateDepartment inserts an active department.
func CreateDepartment(t *testing.T, db *gorm.DB, code string, parentID *uuid.UUID) *model.Department {
	t.Helper()
	d := &model.Department{Code: code, Name: "Department " + code, ParentID: parentID, IsActive: true}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create department %s: %v", code, err)
	}
	return d
}

// CreateUser inserts an active user. The password hash is a placeholder
// unless the test sets one.
func CreateUser(t *testing.T, db *gorm.DB, name string, role workflow.Role, departmentID uuid.UUID) *model.User {
	t.Helper()
	u := &model.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password:     "x",
		Role:         string(role),
		DepartmentID: departmentID,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// ActorOf converts a user into the acting identity used by services.
func ActorOf(u *model.User) access.Actor {
	return access.Actor{ID: u.ID, Name: u.Name, Role: workflow.Role(u.Role), DepartmentID: u.DepartmentID}
}

// DoRequest performs an HTTP request against a router.
func DoRequest(router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a JSON response body.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}
