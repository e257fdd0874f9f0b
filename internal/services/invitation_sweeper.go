package services

import (
	"github.com/robfig/cron/v3"

	"github.com/BorisNikolic/timeline-app-sub001/pkg/logger"
)

// InvitationSweeper expires overdue pending invitations on a schedule. Token
// validation already expires what it touches; the sweeper catches rows
// nobody ever tried to redeem.
type InvitationSweeper struct {
	invitations   *InvitationService
	cronScheduler *cron.Cron
}

func NewInvitationSweeper(invitations *InvitationService) *InvitationSweeper {
	return &InvitationSweeper{invitations: invitations}
}

// StartScheduler runs one sweep immediately, then daily at 03:00.
func (s *InvitationSweeper) StartScheduler() {
	s.cronScheduler = cron.New()

	s.sweep()

	if _, err := s.cronScheduler.AddFunc("0 3 * * *", s.sweep); err != nil {
		logger.Errorf("[InvitationSweeper] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[InvitationSweeper] Scheduler started")
}

func (s *InvitationSweeper) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *InvitationSweeper) sweep() {
	expired, err := s.invitations.ExpireOverdue()
	if err != nil {
		logger.Errorf("[InvitationSweeper] Sweep failed: %v", err)
		return
	}
	if expired > 0 {
		logger.Infof("[InvitationSweeper] Expired %d overdue invitations", expired)
	}
}
