// services/reminder.go
package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"tailorbook/models"
	"tailorbook/utils"
)

var errNoTwilio = errors.New("twilio client not configured")

// ReminderService sends customers an SMS the day before their garment
// delivery day. It stays dormant unless Twilio credentials are configured.
type ReminderService struct {
	store  *Store
	log    zerolog.Logger
	client *twilio.RestClient
	from   string
	cron   *cron.Cron
}

func NewReminderService(store *Store, log zerolog.Logger) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	s := &ReminderService{
		store: store,
		log:   log,
		from:  os.Getenv("TWILIO_FROM_NUMBER"),
	}
	if accountSid != "" && authToken != "" {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}
	return s
}

// StartScheduler runs the daily reminder pass at 9 AM.
func (s *ReminderService) StartScheduler() {
	if s.client == nil {
		s.log.Info().Msg("reminder scheduler disabled: no twilio credentials")
		return
	}

	s.cron = cron.New()
	s.cron.AddFunc("0 9 * * *", func() {
		s.SendDeliveryReminders(context.Background())
	})
	s.cron.Start()
	s.log.Info().Msg("reminder scheduler started")
}

// Stop halts the scheduler.
func (s *ReminderService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// SendDeliveryReminders messages every unpaid customer whose delivery day
// is tomorrow. Failures are logged per customer and never abort the pass.
func (s *ReminderService) SendDeliveryReminders(ctx context.Context) {
	s.log.Info().Msg("starting delivery reminder processing")

	tomorrow := utils.WeekdayName(utils.BeginningOfDay(nowFunc()).AddDate(0, 0, 1))

	customers, err := s.store.GetAll(ctx, false)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch customers for reminders")
		return
	}

	sent := 0
	for _, c := range dueCustomers(customers, tomorrow) {
		if err := s.sendSMS(c); err != nil {
			s.log.Warn().Str("id", c.ID).Err(err).Msg("reminder failed")
			continue
		}
		sent++
	}

	s.log.Info().Int("sent", sent).Str("day", tomorrow).Msg("delivery reminder processing completed")
}

// dueCustomers filters the records whose delivery day matches and whose
// payment is still outstanding. Settled customers already collected.
func dueCustomers(customers []*models.Customer, day string) []*models.Customer {
	var due []*models.Customer
	for _, c := range customers {
		if c.DeliveryDay == day && !c.PaymentReceived {
			due = append(due, c)
		}
	}
	return due
}

func (s *ReminderService) sendSMS(c *models.Customer) error {
	if s.client == nil {
		return errNoTwilio
	}

	body := fmt.Sprintf("Salaam %s, your order is ready for pickup tomorrow (%s). Order no %s.",
		c.Name, c.DeliveryDay, c.ID)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + c.Phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}
