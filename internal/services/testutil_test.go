package services

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/internal/utils"
)

func init() {
	utils.SetJWTSecret("test-secret-for-service-testing")
}

// newTestDB returns an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: models.StampNow,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// stubMailer records outgoing invitation mail and can be told to fail.
type stubMailer struct {
	sent []InvitationMail
	fail bool
}

func (m *stubMailer) SendInvitation(mail InvitationMail) error {
	if m.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *stubMailer) InviteLink(token string) string {
	return "http://localhost:3000/invitations/accept/" + token
}

func createUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: strings.ToLower(email), Name: name, PasswordHash: hash}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// createTimeline seeds a timeline with the owner as Admin, the same shape
// TimelineService.Create produces.
func createTimeline(t *testing.T, db *gorm.DB, ownerID, name string) *models.Timeline {
	t.Helper()

	timeline := &models.Timeline{
		Name:      name,
		StartDate: "2026-01-01",
		EndDate:   "2026-06-30",
		Status:    models.StatusPlanning,
		OwnerID:   ownerID,
	}
	if err := db.Create(timeline).Error; err != nil {
		t.Fatalf("create timeline: %v", err)
	}

	member := &models.TimelineMember{
		TimelineID: timeline.ID,
		UserID:     ownerID,
		Role:       models.RoleAdmin,
		InvitedBy:  &ownerID,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
	return timeline
}

func addMember(t *testing.T, db *gorm.DB, timelineID, userID, role string) {
	t.Helper()

	member := &models.TimelineMember{TimelineID: timelineID, UserID: userID, Role: role}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
}
