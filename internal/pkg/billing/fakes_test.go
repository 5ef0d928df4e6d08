package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/coparrent/coparrent/app/models"
	"github.com/coparrent/coparrent/internal/pkg/mail"
)

// fakeRepository is an in-memory Repository with injectable failures.
type fakeRepository struct {
	mu     sync.Mutex
	events map[string]*models.ProcessedEvent

	lookupErr error
	claimErr  error
	updateErr error

	// lookupMiss makes GetProcessedEvent always miss, so an existing row is
	// only discovered by the claim insert.
	lookupMiss bool

	// affected overrides the row count reported by UpdateSubscriptionByEmail.
	affected int64

	updateEmails []string
	updateFields []map[string]interface{}
	failedEvents map[string]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		events:       make(map[string]*models.ProcessedEvent),
		affected:     1,
		failedEvents: make(map[string]string),
	}
}

func (f *fakeRepository) GetProcessedEvent(eventID string) (*models.ProcessedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if f.lookupMiss {
		return nil, gorm.ErrRecordNotFound
	}
	if ev, ok := f.events[eventID]; ok {
		return ev, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ClaimEvent(event *models.ProcessedEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if _, ok := f.events[event.EventID]; ok {
		return false, nil
	}
	f.events[event.EventID] = event
	return true, nil
}

func (f *fakeRepository) MarkEventProcessed(eventID, customerEmail, metadata string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ev.Status = models.EventStatusProcessed
	ev.CustomerEmail = customerEmail
	ev.Metadata = metadata
	return nil
}

func (f *fakeRepository) MarkEventFailed(eventID, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedEvents[eventID] = processingError
	if ev, ok := f.events[eventID]; ok {
		ev.Status = models.EventStatusFailed
		ev.ProcessingError = processingError
	}
	return nil
}

func (f *fakeRepository) UpdateSubscriptionByEmail(email string, fields map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	f.updateEmails = append(f.updateEmails, email)
	f.updateFields = append(f.updateFields, fields)
	return f.affected, nil
}

func (f *fakeRepository) ListRecentEvents(limit int) ([]models.ProcessedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProcessedEvent
	for _, ev := range f.events {
		out = append(out, *ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepository) ListProcessedBefore(cutoff time.Time, limit int) ([]models.ProcessedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProcessedEvent
	for _, ev := range f.events {
		if ev.CreatedAt.Before(cutoff) && ev.Status != models.EventStatusProcessing {
			out = append(out, *ev)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepository) DeleteEvents(eventIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, id := range eventIDs {
		if _, ok := f.events[id]; ok {
			delete(f.events, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeRepository) eventStatus(eventID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := f.events[eventID]; ok {
		return ev.Status
	}
	return ""
}

// fakeProvider serves canned customers and subscriptions.
type fakeProvider struct {
	customers map[string]*Customer
	subs      map[string]*Subscription

	customerErr error
	subErr      error
}

func (f *fakeProvider) GetCustomer(_ context.Context, customerID string) (*Customer, error) {
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	if c, ok := f.customers[customerID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown customer %s", customerID)
}

func (f *fakeProvider) GetSubscription(_ context.Context, subscriptionID string) (*Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	if s, ok := f.subs[subscriptionID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown subscription %s", subscriptionID)
}

// fakeSender records every message handed to it.
type fakeSender struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) *mail.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return &mail.Result{ID: "fake"}
}

func (f *fakeSender) sent() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.messages...)
}
