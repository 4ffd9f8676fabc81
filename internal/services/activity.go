package services

import (
	"context"

	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/pkg/logger"
)

// ActivityLog records feed entries. Failures are logged and never fail the caller.
type ActivityLog struct {
	recorder ActivityRecorder
}

func NewActivityLog(recorder ActivityRecorder) *ActivityLog {
	return &ActivityLog{recorder: recorder}
}

func (l *ActivityLog) Log(ctx context.Context, profileID string, activityType models.ActivityType, targetID string, message string) {
	if l == nil || l.recorder == nil {
		return
	}
	activity := models.UserActivity{
		Type:      activityType,
		ProfileID: profileID,
		TargetID:  targetID,
		Message:   message,
	}

	if err := l.recorder.Record(ctx, &activity); err != nil {
		logger.Warn().Err(err).Str("profile_id", profileID).Str("type", string(activityType)).Msg("Failed to log activity")
	}
}
