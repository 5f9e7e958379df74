package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/client"
	"github.com/zerovacancy/zerovacancy/internal/core"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a creator for a project",
	Example: `  zerovacancy book --project 1 --creator creator-2 --at 2025-04-01T15:00:00Z --duration 2h`,
	RunE: runBook,
}

var (
	bookProject  string
	bookCreator  string
	bookAt       string
	bookDuration time.Duration
	bookNotes    string
)

func init() {
	rootCmd.AddCommand(bookCmd)

	bookCmd.Flags().StringVar(&bookProject, "project", "", "project ID")
	bookCmd.Flags().StringVar(&bookCreator, "creator", "", "creator ID")
	bookCmd.Flags().StringVar(&bookAt, "at", "", "shoot start time (RFC 3339)")
	bookCmd.Flags().DurationVar(&bookDuration, "duration", time.Hour, "shoot length")
	bookCmd.Flags().StringVar(&bookNotes, "notes", "", "notes for the creator")
	bookCmd.MarkFlagRequired("project")
	bookCmd.MarkFlagRequired("creator")
	bookCmd.MarkFlagRequired("at")
}

func runBook(cmd *cobra.Command, args []string) error {
	at, err := time.Parse(time.RFC3339, bookAt)
	if err != nil {
		return core.Validation("--at must be an RFC 3339 time, e.g. 2025-04-01T15:00:00Z",
			map[string]any{"field": "scheduledFor"})
	}

	return withClient(func(ctx context.Context, env *clientEnv) error {
		user, err := env.currentUser(ctx)
		if err != nil {
			return err
		}

		list := client.NewBookingList(nil)
		m := client.NewBookingMutation(env.backend, list, client.BookingMutationOptions{
			Announcer: env.announcer,
			Logger:    env.log,
		})

		booking, err := client.Schedule(ctx, m, client.BookingRequest{
			ProjectID:    bookProject,
			CreatorID:    bookCreator,
			ManagerID:    user.ID,
			ScheduledFor: at,
			Duration:     bookDuration,
			Notes:        bookNotes,
		})
		if err != nil {
			return err
		}

		env.log.Info("booking created",
			zap.String("booking_id", booking.ID),
			zap.String("project_id", booking.ProjectID),
		)
		fmt.Printf("Booked %s for project %s on %s (%s), status %s\n",
			booking.CreatorID, booking.ProjectID,
			booking.ScheduledFor.Format("Mon Jan 2 15:04 MST"), booking.Duration, booking.Status)
		fmt.Printf("Booking ID: %s\n", booking.ID)
		return nil
	})
}
