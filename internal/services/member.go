package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
)

// MemberService owns the (timeline, user) -> role relation and enforces the
// last-admin invariant: a timeline with any members always retains at least
// one Admin. Demotions and removals of an Admin execute as a single guarded
// statement so two concurrent writers cannot jointly strip the last Admin.
type MemberService struct {
	db    *gorm.DB
	prefs *PreferencesService
}

func NewMemberService(db *gorm.DB, prefs *PreferencesService) *MemberService {
	return &MemberService{db: db, prefs: prefs}
}

// GetMembership returns the user's membership row, or nil when the user does
// not belong to the timeline.
func (s *MemberService) GetMembership(userID, timelineID string) (*models.TimelineMember, error) {
	var member models.TimelineMember
	err := s.db.Where("user_id = ? AND timeline_id = ?", userID, timelineID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers returns all members of a timeline with user details, ordered
// Admin -> Editor -> Viewer and by join time within a role.
func (s *MemberService) ListMembers(timelineID string) ([]models.TimelineMember, error) {
	var members []models.TimelineMember
	err := s.db.Where("timeline_id = ?", timelineID).
		Preload("User").
		Order("CASE role WHEN 'Admin' THEN 1 WHEN 'Editor' THEN 2 ELSE 3 END, joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember adds a user to a timeline with the given role.
func (s *MemberService) AddMember(timelineID, userID, role string, invitedBy *string) (*models.TimelineMember, error) {
	if !models.IsValidRole(role) {
		return nil, &ValidationError{Message: "invalid role: " + role}
	}

	existing, err := s.GetMembership(userID, timelineID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{Message: "user is already a member of this timeline"}
	}

	member := models.TimelineMember{
		TimelineID: timelineID,
		UserID:     userID,
		Role:       role,
		InvitedBy:  invitedBy,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").First(&member, "id = ?", member.ID)
	return &member, nil
}

// adminGuard is the conditional appended to demotions and removals of a
// member row: the statement only touches the row when the target is not an
// Admin, or when at least one other Admin remains on the timeline. Counting
// excludes the target row itself so it is never counted twice.
const adminGuard = `role <> 'Admin' OR EXISTS (
	SELECT 1 FROM timeline_members other
	WHERE other.timeline_id = ? AND other.role = 'Admin' AND other.user_id <> ?
)`

// UpdateRole changes a member's role. Demoting the sole Admin fails with
// LastAdminError and writes nothing.
func (s *MemberService) UpdateRole(timelineID, targetUserID, newRole string) (*models.TimelineMember, error) {
	if !models.IsValidRole(newRole) {
		return nil, &ValidationError{Message: "invalid role: " + newRole}
	}

	query := s.db.Model(&models.TimelineMember{}).
		Where("timeline_id = ? AND user_id = ?", timelineID, targetUserID)
	if newRole != models.RoleAdmin {
		query = query.Where(adminGuard, timelineID, targetUserID)
	}

	res := query.Update("role", newRole)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, s.explainGuardMiss(timelineID, targetUserID)
	}

	var member models.TimelineMember
	if err := s.db.Preload("User").
		Where("timeline_id = ? AND user_id = ?", timelineID, targetUserID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember removes a user from a timeline. Removing the sole Admin fails
// with LastAdminError. On success the user's last-timeline preference is
// cleared if it pointed here.
func (s *MemberService) RemoveMember(timelineID, targetUserID string) error {
	res := s.db.
		Where("timeline_id = ? AND user_id = ?", timelineID, targetUserID).
		Where(adminGuard, timelineID, targetUserID).
		Delete(&models.TimelineMember{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return s.explainGuardMiss(timelineID, targetUserID)
	}

	return s.prefs.ClearIfLastTimeline(targetUserID, timelineID)
}

// Leave lets a user remove their own membership, under the same guard.
func (s *MemberService) Leave(userID, timelineID string) error {
	return s.RemoveMember(timelineID, userID)
}

// explainGuardMiss distinguishes why a guarded statement touched no rows:
// either the membership does not exist, or the target is the last Admin.
func (s *MemberService) explainGuardMiss(timelineID, targetUserID string) error {
	member, err := s.GetMembership(targetUserID, timelineID)
	if err != nil {
		return err
	}
	if member == nil {
		return &NotFoundError{Message: "member not found"}
	}
	if member.Role == models.RoleAdmin {
		return &LastAdminError{Message: "cannot remove or demote the last admin; assign another admin first"}
	}
	return &ConflictError{Message: "member was modified concurrently, please retry"}
}
