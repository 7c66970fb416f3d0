package services

import (
	"os"
	"strings"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
)

// CreateShoutRequest describes a new shout. File is the path of the recorded
// media to upload.
type CreateShoutRequest struct {
	File        string
	Text        string
	Description string
	Topic       string
	Tags        []string
	Lat         *float64
	Lon         *float64
	ChannelID   string
	ReplyToID   string
}

// IsValid reports whether File names an existing regular file with content.
// It never panics and never touches the network.
func (r CreateShoutRequest) IsValid() bool {
	if r.File == "" {
		return false
	}
	fi, err := os.Stat(r.File)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular() && fi.Size() > 0
}

// ToEntity maps every field onto the wire entity. Tags are joined by commas.
func (r CreateShoutRequest) ToEntity() domain.Shout {
	return domain.Shout{
		Text:        r.Text,
		Description: r.Description,
		Topic:       r.Topic,
		Tags:        JoinTags(r.Tags),
		Lat:         r.Lat,
		Lon:         r.Lon,
		ChannelID:   r.ChannelID,
		ReplyToID:   r.ReplyToID,
	}
}

// UpdateUserRequest is a partial profile update. Nil fields are left alone;
// a nil TopicPreferences is unset while an empty non-nil slice clears it.
type UpdateUserRequest struct {
	Handle           *string
	Email            *string
	Phone            *string
	Gender           *string
	TopicPreferences []string
}

// IsValid reports whether at least one field is set.
func (r UpdateUserRequest) IsValid() bool {
	return r.Handle != nil || r.Email != nil || r.Phone != nil ||
		r.Gender != nil || r.TopicPreferences != nil
}

// ToEntity returns the patch carrying only the set fields.
func (r UpdateUserRequest) ToEntity() domain.UserPatch {
	p := domain.UserPatch{
		Handle: r.Handle,
		Email:  r.Email,
		Phone:  r.Phone,
		Gender: r.Gender,
	}
	if r.TopicPreferences != nil {
		joined := JoinTags(r.TopicPreferences)
		p.TopicPreferences = &joined
	}
	return p
}

// SubscribeRequest names the channel to (un)subscribe.
type SubscribeRequest struct {
	ChannelID string
}

// IsValid reports whether the channel id is non-blank.
func (r SubscribeRequest) IsValid() bool {
	return strings.TrimSpace(r.ChannelID) != ""
}

// JoinTags joins tags with commas exactly as given. Nil or empty yields "".
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
