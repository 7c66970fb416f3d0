package domain

// Entity is implemented by every wire entity. The keys select the payload
// inside the service's response envelope: data.<SerializationKey> for a single
// entity and data.<ListSerializationKey> for a list.
type Entity interface {
	SerializationKey() string
	ListSerializationKey() string
}

// Shout is a piece of user-submitted content as represented by the service.
// Tags travel as a single comma-joined string.
type Shout struct {
	ID          string   `json:"id,omitempty"`
	Text        string   `json:"text,omitempty"`
	Description string   `json:"description,omitempty"`
	Topic       string   `json:"topic,omitempty"`
	Tags        string   `json:"tags,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	ChannelID   string   `json:"channel_id,omitempty"`
	ReplyToID   string   `json:"reply_to_id,omitempty"`
	MediaURL    string   `json:"media_file_url,omitempty"`
	CreatedDate string   `json:"created_date,omitempty"`
}

func (Shout) SerializationKey() string     { return "shout" }
func (Shout) ListSerializationKey() string { return "shouts" }

// User is the profile of the authenticated account.
type User struct {
	ID               string `json:"id"`
	Handle           string `json:"handle,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Gender           string `json:"gender,omitempty"`
	TopicPreferences string `json:"topic_preferences,omitempty"`
	CreatedDate      string `json:"created_date,omitempty"`
}

func (User) SerializationKey() string     { return "user" }
func (User) ListSerializationKey() string { return "users" }

// UserPatch is the partial-update form of User. Nil fields are not sent.
type UserPatch struct {
	Handle           *string `json:"handle,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	TopicPreferences *string `json:"topic_preferences,omitempty"`
}

func (UserPatch) SerializationKey() string     { return "user" }
func (UserPatch) ListSerializationKey() string { return "users" }

// Subscription links the current user to a channel.
type Subscription struct {
	ChannelID   string `json:"channel_id"`
	UserID      string `json:"user_id,omitempty"`
	CreatedDate string `json:"created_date,omitempty"`
}

func (Subscription) SerializationKey() string     { return "subscription" }
func (Subscription) ListSerializationKey() string { return "subscriptions" }

// Channel is a source of notifications a user may subscribe to.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"channel_image,omitempty"`
}

func (Channel) SerializationKey() string     { return "channel" }
func (Channel) ListSerializationKey() string { return "channels" }
