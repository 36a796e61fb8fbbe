package video

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// tokenExpiryMargin forces a refresh shortly before the cached token expires,
// so a request never goes out with a token about to lapse mid-flight.
const tokenExpiryMargin = 60 * time.Second

// Meeting is a scheduled conference returned by the provider.
type Meeting struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
	JoinURL   string    `json:"join_url"`
	StartURL  string    `json:"start_url"`
}

// MeetingID is the provider meeting id as stored on a LiveClass row.
func (m *Meeting) MeetingID() string {
	return strconv.FormatInt(m.ID, 10)
}

// Scheduler is the video-provider surface the live-class handlers depend on.
type Scheduler interface {
	CreateMeeting(topic string, startTime time.Time, duration int) (*Meeting, error)
	DeleteMeeting(meetingID string) error
}

// ZoomClient schedules meetings through Zoom's server-to-server OAuth app.
// The access token is acquired lazily and cached until close to expiry.
type ZoomClient struct {
	api  *resty.Client
	auth *resty.Client

	accountID    string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

func NewZoomClient(accountID, clientID, clientSecret string) *ZoomClient {
	return &ZoomClient{
		api:          resty.New().SetBaseURL("https://api.zoom.us/v2").SetTimeout(10 * time.Second),
		auth:         resty.New().SetBaseURL("https://zoom.us").SetTimeout(10 * time.Second),
		accountID:    accountID,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// accessToken returns the cached token, refreshing it when missing or within
// the safety margin of expiry.
func (z *ZoomClient) accessToken() (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.token != "" && z.now().Before(z.tokenExpiry.Add(-tokenExpiryMargin)) {
		return z.token, nil
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	resp, err := z.auth.R().
		SetBasicAuth(z.clientID, z.clientSecret).
		SetQueryParams(map[string]string{
			"grant_type": "account_credentials",
			"account_id": z.accountID,
		}).
		SetResult(&result).
		Post("/oauth/token")
	if err != nil {
		return "", fmt.Errorf("zoom token request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("zoom token request: %s: %s", resp.Status(), resp.String())
	}

	z.token = result.AccessToken
	z.tokenExpiry = z.now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return z.token, nil
}

func (z *ZoomClient) CreateMeeting(topic string, startTime time.Time, duration int) (*Meeting, error) {
	token, err := z.accessToken()
	if err != nil {
		return nil, err
	}

	var meeting Meeting
	resp, err := z.api.R().
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"topic":      topic,
			"type":       2, // scheduled meeting
			"start_time": startTime.UTC().Format(time.RFC3339),
			"duration":   duration,
		}).
		SetResult(&meeting).
		Post("/users/me/meetings")
	if err != nil {
		return nil, fmt.Errorf("zoom create meeting: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("zoom create meeting: %s: %s", resp.Status(), resp.String())
	}

	return &meeting, nil
}

func (z *ZoomClient) DeleteMeeting(meetingID string) error {
	token, err := z.accessToken()
	if err != nil {
		return err
	}

	resp, err := z.api.R().
		SetAuthToken(token).
		Delete("/meetings/" + meetingID)
	if err != nil {
		return fmt.Errorf("zoom delete meeting: %w", err)
	}
	if !resp.IsSuccess() && resp.StatusCode() != 404 {
		return fmt.Errorf("zoom delete meeting: %s: %s", resp.Status(), resp.String())
	}

	return nil
}
