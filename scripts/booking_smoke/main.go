package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/noah-isme/slot-booking-api/internal/client"
	"github.com/noah-isme/slot-booking-api/internal/dto"
)

type step struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

type result struct {
	Step     step
	Err      error
	Duration time.Duration
}

// flow keeps what earlier steps learned for later ones.
type flow struct {
	visitor *client.Client
	admin   *client.Client
	date    string
	slotID  int64
	booking int64
}

func main() {
	var (
		base    string
		token   string
		date    string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/v1", "API base URL including the version prefix")
	flag.StringVar(&token, "token", os.Getenv("SMOKE_ADMIN_TOKEN"), "admin bearer token (see cmd/issue-token)")
	flag.StringVar(&date, "date", time.Now().AddDate(1, 0, 0).Format("2006-01-02"), "date to create slots on")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("an admin token is required (-token or SMOKE_ADMIN_TOKEN)")
	}

	hc := &http.Client{Timeout: timeout}
	f := &flow{
		visitor: client.New(base, client.WithHTTPClient(hc)),
		admin:   client.New(base, client.WithHTTPClient(hc), client.WithToken(token)),
		date:    date,
	}

	results := run(context.Background(), f.steps())
	printReport(results)

	failed := 0
	for _, r := range results {
		if r.Err != nil && r.Step.Critical {
			failed++
		}
	}
	fmt.Printf("Critical failures: %d\n", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// run stops at the first critical failure; later steps depend on earlier ones.
func run(ctx context.Context, steps []step) []result {
	results := make([]result, 0, len(steps))
	for _, s := range steps {
		start := time.Now()
		err := s.Run(ctx)
		results = append(results, result{Step: s, Err: err, Duration: time.Since(start)})
		if err != nil && s.Critical {
			break
		}
	}
	return results
}

func (f *flow) steps() []step {
	return []step{
		{Name: "create slots", Critical: true, Run: f.createSlots},
		{Name: "slot listed as available", Critical: true, Run: f.expectAvailable(true)},
		{Name: "book slot", Critical: true, Run: f.book},
		{Name: "second booking rejected", Critical: true, Run: f.bookAgain},
		{Name: "slot no longer available", Critical: true, Run: f.expectAvailable(false)},
		{Name: "booking listed for date", Critical: true, Run: f.expectBooked},
		{Name: "reminder queued", Critical: false, Run: f.remind},
		{Name: "cancel booking", Critical: true, Run: f.cancel},
		{Name: "slot available again", Critical: true, Run: f.expectAvailable(true)},
	}
}

func (f *flow) createSlots(ctx context.Context) error {
	resp, err := f.admin.CreateSlots(ctx, dto.CreateSlotsRequest{
		Date:  f.date,
		Slots: []dto.SlotWindow{{StartTime: "09:00", EndTime: "09:30"}},
	})
	if err != nil {
		return err
	}
	if len(resp.Slots) != 1 {
		return fmt.Errorf("expected 1 slot, got %d", len(resp.Slots))
	}
	f.slotID = resp.Slots[0].ID
	return nil
}

func (f *flow) expectAvailable(want bool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		resp, err := f.visitor.AvailableSlots(ctx, f.date)
		if err != nil {
			return err
		}
		found := false
		for _, s := range resp.Slots {
			if s.ID == f.slotID {
				found = true
			}
		}
		if found != want {
			return fmt.Errorf("slot %d available=%t, want %t", f.slotID, found, want)
		}
		return nil
	}
}

func (f *flow) bookRequest() dto.BookSlotRequest {
	return dto.BookSlotRequest{TimeSlotID: f.slotID, VisitorName: "Smoke Test", VisitorEmail: "smoke@example.com"}
}

func (f *flow) book(ctx context.Context) error {
	resp, err := f.visitor.BookSlot(ctx, f.bookRequest())
	if err != nil {
		return err
	}
	f.booking = resp.Booking.ID
	return nil
}

func (f *flow) bookAgain(ctx context.Context) error {
	_, err := f.visitor.BookSlot(ctx, f.bookRequest())
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		return fmt.Errorf("expected 409, got %v", err)
	}
	return nil
}

func (f *flow) expectBooked(ctx context.Context) error {
	resp, err := f.admin.Bookings(ctx, f.date)
	if err != nil {
		return err
	}
	for _, b := range resp.Bookings {
		if b.ID == f.booking {
			return nil
		}
	}
	return fmt.Errorf("booking %d missing from %s", f.booking, f.date)
}

func (f *flow) remind(ctx context.Context) error {
	_, err := f.admin.RequestReminder(ctx, f.booking)
	return err
}

func (f *flow) cancel(ctx context.Context) error {
	_, err := f.admin.CancelBooking(ctx, f.booking)
	return err
}

func printReport(results []result) {
	fmt.Println("Booking Smoke Report")
	fmt.Println("====================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s (%s)\n", status, res.Step.Name, res.Duration)
		if res.Err != nil {
			fmt.Printf("  Error: %v | Critical: %t\n", res.Err, res.Step.Critical)
		}
	}
}
