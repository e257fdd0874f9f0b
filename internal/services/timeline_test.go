package services

import (
	"errors"
	"testing"
	"time"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
)

func strptr(s string) *string { return &s }

func TestCreateTimeline_CreatorBecomesAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")

	timeline, err := svc.Create(owner.ID, &CreateTimelineRequest{
		Name:      "Product Launch",
		StartDate: "2026-03-01",
		EndDate:   "2026-09-30",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if timeline.Status != models.StatusPlanning {
		t.Errorf("status = %q, want Planning", timeline.Status)
	}

	var member models.TimelineMember
	if err := db.Where("timeline_id = ? AND user_id = ?", timeline.ID, owner.ID).First(&member).Error; err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("creator role = %q, want Admin", member.Role)
	}
}

func TestCreateTimeline_DuplicateNameCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	createTimeline(t, db, owner.ID, "Product Launch")

	_, err := svc.Create(owner.ID, &CreateTimelineRequest{
		Name:      "PRODUCT LAUNCH",
		StartDate: "2026-03-01",
		EndDate:   "2026-09-30",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestCreateTimeline_SameNameDifferentUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	alice := createUser(t, db, "alice@example.com", "Alice")
	bob := createUser(t, db, "bob@example.com", "Bob")
	createTimeline(t, db, alice.ID, "Product Launch")

	// Uniqueness is scoped to timelines the user can see, not global.
	if _, err := svc.Create(bob.ID, &CreateTimelineRequest{
		Name:      "Product Launch",
		StartDate: "2026-03-01",
		EndDate:   "2026-09-30",
	}); err != nil {
		t.Fatalf("unrelated user should reuse the name: %v", err)
	}
}

func TestCreateTimeline_InvalidDateRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")

	_, err := svc.Create(owner.ID, &CreateTimelineRequest{
		Name:      "Backwards",
		StartDate: "2026-09-30",
		EndDate:   "2026-03-01",
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestVerifyAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	viewer := createUser(t, db, "viewer@example.com", "Viewer")
	stranger := createUser(t, db, "stranger@example.com", "Stranger")
	timeline := createTimeline(t, db, owner.ID, "Launch Plan")
	addMember(t, db, timeline.ID, viewer.ID, models.RoleViewer)

	role, got, err := svc.VerifyAccess(owner.ID, timeline.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("owner admin access: %v", err)
	}
	if role != models.RoleAdmin || got.ID != timeline.ID {
		t.Errorf("role = %q, timeline = %q", role, got.ID)
	}

	var forbidden *ForbiddenError

	// Insufficient rank.
	if _, _, err := svc.VerifyAccess(viewer.ID, timeline.ID, models.RoleEditor); !errors.As(err, &forbidden) {
		t.Errorf("viewer asking Editor: expected ForbiddenError, got %v", err)
	}

	// No membership at all looks identical.
	if _, _, err := svc.VerifyAccess(stranger.ID, timeline.ID, models.RoleViewer); !errors.As(err, &forbidden) {
		t.Errorf("stranger: expected ForbiddenError, got %v", err)
	}

	// Unknown timeline also looks identical.
	if _, _, err := svc.VerifyAccess(owner.ID, "no-such-id", models.RoleViewer); !errors.As(err, &forbidden) {
		t.Errorf("unknown timeline: expected ForbiddenError, got %v", err)
	}
}

func TestGetAccessible_ExcludesArchived(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	active := createTimeline(t, db, owner.ID, "Active Plan")
	archived := createTimeline(t, db, owner.ID, "Old Plan")
	db.Model(&models.Timeline{}).Where("id = ?", archived.ID).Update("status", models.StatusArchived)

	rows, err := svc.GetAccessible(owner.ID)
	if err != nil {
		t.Fatalf("get accessible: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != active.ID {
		t.Fatalf("expected only the active timeline, got %d rows", len(rows))
	}
	if rows[0].UserRole != models.RoleAdmin {
		t.Errorf("user_role = %q, want Admin", rows[0].UserRole)
	}
	if rows[0].MemberCount != 1 {
		t.Errorf("member_count = %d, want 1", rows[0].MemberCount)
	}
}

func TestUpdateTimeline_StatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	timeline := createTimeline(t, db, owner.ID, "Launch Plan")

	// Planning -> Active is allowed.
	updated, err := svc.Update(timeline.ID, &UpdateTimelineRequest{Status: strptr(models.StatusActive)})
	if err != nil {
		t.Fatalf("Planning -> Active: %v", err)
	}
	if updated.Status != models.StatusActive {
		t.Errorf("status = %q, want Active", updated.Status)
	}

	// Active -> Planning is not.
	_, err = svc.Update(timeline.ID, &UpdateTimelineRequest{Status: strptr(models.StatusPlanning)})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Active -> Planning: expected ConflictError, got %v", err)
	}

	// Unknown status is a validation failure, not a conflict.
	_, err = svc.Update(timeline.ID, &UpdateTimelineRequest{Status: strptr("Paused")})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("unknown status: expected ValidationError, got %v", err)
	}
}

func TestUpdateTimeline_OptimisticConcurrency(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	timeline := createTimeline(t, db, owner.ID, "Launch Plan")

	// First client reads the stamp.
	first, err := svc.Update(timeline.ID, &UpdateTimelineRequest{Name: strptr("Launch Plan v2")})
	if err != nil {
		t.Fatalf("initial update: %v", err)
	}
	staleStamp := first.UpdatedAt

	// Second client wins the race.
	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Update(timeline.ID, &UpdateTimelineRequest{Name: strptr("Launch Plan v3")}); err != nil {
		t.Fatalf("competing update: %v", err)
	}

	// First client's conditional write must now fail.
	_, err = svc.Update(timeline.ID, &UpdateTimelineRequest{
		Name:              strptr("Launch Plan stale"),
		ExpectedUpdatedAt: &staleStamp,
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("stale stamp: expected ConflictError, got %v", err)
	}

	// A write carrying the current stamp succeeds.
	var current models.Timeline
	db.First(&current, "id = ?", timeline.ID)
	fresh := current.UpdatedAt
	updated, err := svc.Update(timeline.ID, &UpdateTimelineRequest{
		Name:              strptr("Launch Plan final"),
		ExpectedUpdatedAt: &fresh,
	})
	if err != nil {
		t.Fatalf("fresh stamp: %v", err)
	}
	if updated.Name != "Launch Plan final" {
		t.Errorf("name = %q", updated.Name)
	}
}

func TestUpdateTimeline_StampFromCreateMatches(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	timeline, err := svc.Create(owner.ID, &CreateTimelineRequest{
		Name:      "Launch Plan",
		StartDate: "2026-01-01",
		EndDate:   "2026-06-30",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The stamp a client sees right after creation, read back from storage,
	// must satisfy the conditional write without any prior update.
	var stored models.Timeline
	if err := db.First(&stored, "id = ?", timeline.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	stamp := stored.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	updated, err := svc.Update(timeline.ID, &UpdateTimelineRequest{
		Name:              strptr("Launch Plan v2"),
		ExpectedUpdatedAt: &stamp,
	})
	if err != nil {
		t.Fatalf("update with creation stamp: %v", err)
	}
	if updated.Name != "Launch Plan v2" {
		t.Errorf("name = %q", updated.Name)
	}
	if !updated.UpdatedAt.After(stamp) {
		t.Errorf("version did not advance: %v -> %v", stamp, updated.UpdatedAt)
	}
}

func TestUnarchive(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	timeline := createTimeline(t, db, owner.ID, "Launch Plan")
	db.Model(&models.Timeline{}).Where("id = ?", timeline.ID).Update("status", models.StatusArchived)

	updated, err := svc.Unarchive(timeline.ID)
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Errorf("status = %q, want Completed", updated.Status)
	}

	// Unarchiving a non-archived timeline is rejected.
	if _, err := svc.Unarchive(timeline.ID); err == nil {
		t.Error("unarchiving a Completed timeline should fail")
	}
}

func TestCopyTimeline_ShiftsDatesAndResetsStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	source := createTimeline(t, db, owner.ID, "Launch Plan") // starts 2026-01-01
	db.Model(&models.Timeline{}).Where("id = ?", source.ID).Update("status", models.StatusCompleted)

	cat := models.Category{TimelineID: source.ID, Name: "Marketing", Color: "red", CreatedBy: owner.ID}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	event := models.Event{
		TimelineID:     source.ID,
		Title:          "Kickoff",
		Date:           "2026-01-05",
		CategoryID:     cat.ID,
		AssignedPerson: "Dana",
		Status:         models.EventCompleted,
		CreatedBy:      owner.ID,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatal(err)
	}

	// +10 days.
	result, err := svc.Copy(source.ID, owner.ID, &CopyTimelineRequest{
		Name:      "Launch Plan 2027",
		StartDate: "2026-01-11",
		EndDate:   "2026-07-10",
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	if result.Timeline.Status != models.StatusPlanning {
		t.Errorf("copy status = %q, want Planning", result.Timeline.Status)
	}
	if result.CategoriesCopied != 1 || result.EventsCopied != 1 || result.EventsSkipped != 0 {
		t.Errorf("counts = %d/%d/%d, want 1/1/0",
			result.CategoriesCopied, result.EventsCopied, result.EventsSkipped)
	}

	var copied models.Event
	if err := db.Where("timeline_id = ?", result.Timeline.ID).First(&copied).Error; err != nil {
		t.Fatalf("copied event missing: %v", err)
	}
	if copied.Date != "2026-01-15" {
		t.Errorf("copied date = %q, want 2026-01-15", copied.Date)
	}
	if copied.Status != models.EventNotStarted {
		t.Errorf("copied status = %q, want Not Started", copied.Status)
	}
	if copied.SourceEventID == nil || *copied.SourceEventID != event.ID {
		t.Error("copied event should reference its source")
	}
	if copied.AssignedPerson != "Dana" {
		t.Errorf("assignment = %q, want Dana", copied.AssignedPerson)
	}
	if copied.CategoryID == cat.ID {
		t.Error("copied event should point at the copied category, not the original")
	}

	// The requester is the sole Admin of the copy.
	var members []models.TimelineMember
	db.Where("timeline_id = ?", result.Timeline.ID).Find(&members)
	if len(members) != 1 || members[0].Role != models.RoleAdmin || members[0].UserID != owner.ID {
		t.Errorf("copy membership = %+v", members)
	}
}

func TestCopyTimeline_SkipsUnresolvableCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	source := createTimeline(t, db, owner.ID, "Launch Plan")

	// Event pointing at a category that no longer exists.
	event := models.Event{
		TimelineID: source.ID,
		Title:      "Orphan",
		Date:       "2026-01-05",
		CategoryID: "deleted-category-id",
		CreatedBy:  owner.ID,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatal(err)
	}

	result, err := svc.Copy(source.ID, owner.ID, &CopyTimelineRequest{
		Name:      "Launch Plan Copy",
		StartDate: "2026-01-01",
		EndDate:   "2026-06-30",
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if result.EventsCopied != 0 || result.EventsSkipped != 1 {
		t.Errorf("copied/skipped = %d/%d, want 0/1", result.EventsCopied, result.EventsSkipped)
	}
}

func TestCopyTimeline_WithoutAssignments(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	source := createTimeline(t, db, owner.ID, "Launch Plan")

	cat := models.Category{TimelineID: source.ID, Name: "Ops", Color: "blue", CreatedBy: owner.ID}
	db.Create(&cat)
	db.Create(&models.Event{
		TimelineID:     source.ID,
		Title:          "Handover",
		Date:           "2026-02-01",
		CategoryID:     cat.ID,
		AssignedPerson: "Dana",
		CreatedBy:      owner.ID,
	})

	off := false
	result, err := svc.Copy(source.ID, owner.ID, &CopyTimelineRequest{
		Name:               "Launch Plan Copy",
		StartDate:          "2026-01-01",
		EndDate:            "2026-06-30",
		IncludeAssignments: &off,
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	var copied models.Event
	db.Where("timeline_id = ?", result.Timeline.ID).First(&copied)
	if copied.AssignedPerson != "" {
		t.Errorf("assignment should be dropped, got %q", copied.AssignedPerson)
	}
}

func TestCopyTimeline_ManyEventsAcrossBatches(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	source := createTimeline(t, db, owner.ID, "Launch Plan")

	cat := models.Category{TimelineID: source.ID, Name: "Bulk", Color: "green", CreatedBy: owner.ID}
	db.Create(&cat)
	for i := 0; i < copyBatchSize+25; i++ {
		db.Create(&models.Event{
			TimelineID: source.ID,
			Title:      "Task",
			Date:       "2026-01-05",
			CategoryID: cat.ID,
			CreatedBy:  owner.ID,
		})
	}

	result, err := svc.Copy(source.ID, owner.ID, &CopyTimelineRequest{
		Name:      "Launch Plan Copy",
		StartDate: "2026-01-01",
		EndDate:   "2026-06-30",
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if result.EventsCopied != copyBatchSize+25 {
		t.Errorf("events copied = %d, want %d", result.EventsCopied, copyBatchSize+25)
	}
}

func TestDeleteTimeline_Cascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimelineService(db)

	owner := createUser(t, db, "owner@example.com", "Owner")
	timeline := createTimeline(t, db, owner.ID, "Launch Plan")
	db.Create(&models.Event{TimelineID: timeline.ID, Title: "Task", Date: "2026-01-05", CreatedBy: owner.ID})

	if err := svc.Delete(timeline.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var notFound *NotFoundError
	if err := svc.Delete(timeline.ID); !errors.As(err, &notFound) {
		t.Errorf("second delete: expected NotFoundError, got %v", err)
	}
}
