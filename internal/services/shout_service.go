package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/api"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/observer"
)

// UploadField is the multipart field carrying the shout media.
const UploadField = "file"

// ShoutAPI is the transport contract required by ShoutService. *api.Client
// satisfies it.
type ShoutAPI interface {
	api.Doer
	DoMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, filePath string) (*api.Envelope, error)
}

// ShoutService creates, reads and deletes shouts.
type ShoutService struct {
	API ShoutAPI
}

// NewShoutService constructs a ShoutService.
func NewShoutService(a ShoutAPI) *ShoutService {
	return &ShoutService{API: a}
}

// Create uploads req.File together with the shout metadata and returns the
// stored shout.
func (s *ShoutService) Create(ctx context.Context, req CreateShoutRequest) (*domain.Shout, error) {
	ctx, span := otel.Tracer("services/ShoutService").Start(ctx, "Create",
		trace.WithAttributes(attribute.String("shout.channel_id", req.ChannelID)))
	defer span.End()

	if !req.IsValid() {
		return nil, fmt.Errorf("%w: shout media file is missing or empty", ErrInvalidRequest)
	}
	env, err := s.API.DoMultipart(ctx, http.MethodPost, "/shouts", shoutFields(req.ToEntity()), UploadField, req.File)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return api.Decode[domain.Shout](env)
}

// CreateAsync runs Create on a background goroutine.
func (s *ShoutService) CreateAsync(ctx context.Context, req CreateShoutRequest) <-chan observer.Result[*domain.Shout] {
	return observer.Go(ctx, observer.KindCreateShout, func(ctx context.Context) (*domain.Shout, error) {
		return s.Create(ctx, req)
	})
}

// Get fetches a shout by id.
func (s *ShoutService) Get(ctx context.Context, id string) (*domain.Shout, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: shout id is empty", ErrInvalidRequest)
	}
	return api.Fetch[domain.Shout](ctx, s.API, http.MethodGet, "/shouts/"+url.PathEscape(id), nil)
}

// Delete removes a shout by id.
func (s *ShoutService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: shout id is empty", ErrInvalidRequest)
	}
	_, err := s.API.Do(ctx, http.MethodDelete, "/shouts/"+url.PathEscape(id), nil)
	return err
}

// shoutFields flattens the non-empty shout fields into multipart form values.
func shoutFields(sh domain.Shout) map[string]string {
	f := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			f[k] = v
		}
	}
	set("text", sh.Text)
	set("description", sh.Description)
	set("topic", sh.Topic)
	set("tags", sh.Tags)
	set("channel_id", sh.ChannelID)
	set("reply_to_id", sh.ReplyToID)
	if sh.Lat != nil {
		f["lat"] = strconv.FormatFloat(*sh.Lat, 'f', -1, 64)
	}
	if sh.Lon != nil {
		f["lon"] = strconv.FormatFloat(*sh.Lon, 'f', -1, 64)
	}
	return f
}
