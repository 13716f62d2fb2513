package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// Event is one allocation event bound for the activity log.
type Event struct {
	ID             string
	Action         string
	RegistrationID int64
	ApplicationID  string
	Details        map[string]any
}

// PushSender defines the interface for sending a web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of PushSender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Recorder persists allocation events as activity-log rows and notifies
// subscribed admin browsers, asynchronously through a worker pool. It is
// best-effort end to end: a full queue drops the event with a log line
// rather than blocking or failing the allocation that produced it.
type Recorder struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options // nil disables push fan-out
	sender  PushSender
}

// NewRecorder creates a recorder with the given worker count and queue depth.
func NewRecorder(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *Recorder {
	return &Recorder{
		size:    size,
		jobs:    make(chan Event, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (r *Recorder) Start(ctx context.Context) {
	for i := 0; i < r.size; i++ {
		go r.worker(ctx, i)
	}
}

func (r *Recorder) worker(ctx context.Context, id int) {
	log.Printf("event worker %d started", id)
	for {
		select {
		case ev := <-r.jobs:
			r.process(ctx, ev)
		case <-ctx.Done():
			log.Printf("event worker %d shutting down", id)
			return
		}
	}
}

// Jobs returns the jobs channel for testing.
func (r *Recorder) Jobs() chan Event {
	return r.jobs
}

// BedAssigned enqueues a bed_assignment event.
func (r *Recorder) BedAssigned(_ context.Context, reg model.Registration, hostelName string) {
	r.dispatch(Event{
		ID:             uuid.NewString(),
		Action:         model.ActionBedAssignment,
		RegistrationID: reg.ID,
		ApplicationID:  reg.ApplicationID,
		Details:        map[string]any{"name": reg.Name, "hostel": hostelName},
	})
}

// BedUnassigned enqueues a bed_unassignment event.
func (r *Recorder) BedUnassigned(_ context.Context, reg model.Registration) {
	r.dispatch(Event{
		ID:             uuid.NewString(),
		Action:         model.ActionBedUnassignment,
		RegistrationID: reg.ID,
		ApplicationID:  reg.ApplicationID,
		Details:        map[string]any{"name": reg.Name},
	})
}

func (r *Recorder) dispatch(ev Event) {
	select {
	case r.jobs <- ev:
	default:
		log.Printf("event queue full; dropping %s for registration %d", ev.Action, ev.RegistrationID)
	}
}

// process writes the activity-log row and fans out push notifications.
func (r *Recorder) process(ctx context.Context, ev Event) {
	details, err := json.Marshal(ev.Details)
	if err != nil {
		log.Printf("error marshalling details for event %s: %v", ev.ID, err)
		details = []byte("{}")
	}

	row := model.ActivityLog{
		ID:                   ev.ID,
		Action:               ev.Action,
		TargetRegistrationID: ev.RegistrationID,
		TargetApplicationID:  ev.ApplicationID,
		Details:              details,
		CreatedAt:            time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("error persisting activity log %s: %v", ev.ID, err)
	}

	if r.webpush != nil {
		r.notifyAdmins(ctx, ev)
	}
}

// notifyAdmins sends a push notification to every subscribed admin browser.
func (r *Recorder) notifyAdmins(ctx context.Context, ev Event) {
	var subscriptions []model.PushSubscription
	if err := r.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("error fetching push subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var message string
	switch ev.Action {
	case model.ActionBedAssignment:
		message = fmt.Sprintf("%s (%s) assigned to %v", ev.Details["name"], ev.ApplicationID, ev.Details["hostel"])
	case model.ActionBedUnassignment:
		message = fmt.Sprintf("%s (%s) unassigned", ev.Details["name"], ev.ApplicationID)
	default:
		return
	}

	for _, sub := range subscriptions {
		r.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification and prunes
// subscriptions the push service reports as gone.
func (r *Recorder) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := r.sender.Send(payload, wpSub, r.webpush)
	if err != nil {
		log.Printf("error sending push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		if err := r.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("error deleting expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
