package authinfra

import (
	"time"

	"github.com/Abraxas-365/debelu/pkg/iam/auth"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/Abraxas-365/debelu/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

var _ auth.AuditService = (*LogxAuditService)(nil)

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogAuthenticated(userID kernel.UserID, path, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "authenticated",
		"user_id":     userID,
		"path":        path,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Debug("Audit: request authenticated")
}

func (s *LogxAuditService) LogRejected(reason, path, ip, userAgent string) {
	logx.WithFields(logx.Fields{
		"audit_event": "auth_rejected",
		"reason":      reason,
		"path":        path,
		"ip":          ip,
		"user_agent":  userAgent,
		"timestamp":   time.Now(),
	}).Warn("Audit: request rejected")
}
