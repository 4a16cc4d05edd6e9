package constant

// Content types
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
	ContentTypeVoice = "voice"
)

// IsValidContentType checks a message content type
func IsValidContentType(t string) bool {
	switch t {
	case ContentTypeText, ContentTypeImage, ContentTypeVideo, ContentTypeVoice:
		return true
	}
	return false
}

// Delivery status
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Realtime event kinds
const (
	EventKindMessage      = "message"
	EventKindNotification = "notification"
)

// LocalIdPrefix marks client-generated temporary message ids. Server ids
// are bare sonyflake decimals, so a prefixed id can never collide.
const LocalIdPrefix = "local_"

// Upload kinds accepted by the media gateway
const (
	UploadKindMessageImage = "message_image"
	UploadKindMessageVideo = "message_video"
	UploadKindMessageVoice = "message_voice"
	UploadKindGroupImage   = "group_image"
)

// UploadKindForContentType maps a message content type to the media
// gateway upload kind
func UploadKindForContentType(contentType string) string {
	switch contentType {
	case ContentTypeImage:
		return UploadKindMessageImage
	case ContentTypeVideo:
		return UploadKindMessageVideo
	case ContentTypeVoice:
		return UploadKindMessageVoice
	default:
		return ""
	}
}
