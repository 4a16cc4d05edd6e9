package entity

// Profile is a denormalized display snapshot of a user. It is a weak
// reference: refreshed independently, never authoritative.
type Profile struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarUrl string `json:"avatar_url"`
}

// PlaceholderProfile is shown when the profile directory cannot resolve
// a user; lookup failures never block message delivery.
func PlaceholderProfile(userId string) Profile {
	return Profile{Name: "Unknown", Username: userId}
}

// Participant is a conversation member with their display snapshot
type Participant struct {
	UserId  string  `json:"user_id"`
	Profile Profile `json:"profile"`
}

// Conversation represents a direct or group messaging thread
type Conversation struct {
	Id            string        `json:"id"`
	IsGroup       bool          `json:"is_group"`
	GroupName     string        `json:"group_name,omitempty"`
	GroupImageUrl string        `json:"group_image_url,omitempty"`
	Participants  []Participant `json:"participants"`
	LastMessage   *Message      `json:"last_message,omitempty"`
	LastMessageAt int64         `json:"last_message_at"`
	UnreadCount   int           `json:"unread_count"`
}

// HasParticipant reports whether userId is a member
func (c *Conversation) HasParticipant(userId string) bool {
	for _, p := range c.Participants {
		if p.UserId == userId {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own participant slice
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Participants = append([]Participant(nil), c.Participants...)
	if c.LastMessage != nil {
		cp.LastMessage = c.LastMessage.Clone()
	}
	return &cp
}
