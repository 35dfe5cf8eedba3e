package ai

import "strings"

// Failure reasons attached to log lines when an AI call falls back. They
// are derived from the error text because the upstream SDK-free client
// only surfaces messages.
const (
	ReasonQuota       = "quota_exceeded"
	ReasonAuth        = "auth_failed"
	ReasonRegion      = "region_blocked"
	ReasonTimeout     = "timeout"
	ReasonUnavailable = "service_unavailable"
	ReasonUnknown     = "unknown"
)

// ClassifyFailure buckets an AI error into a coarse reason for logs and
// status reporting.
func ClassifyFailure(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429"):
		return ReasonQuota
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission_denied") || strings.Contains(msg, "401") ||
		strings.Contains(msg, "403"):
		return ReasonAuth
	case strings.Contains(msg, "location") || strings.Contains(msg, "region"):
		return ReasonRegion
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "context canceled"):
		return ReasonTimeout
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "500") || strings.Contains(msg, "503"):
		return ReasonUnavailable
	default:
		return ReasonUnknown
	}
}
