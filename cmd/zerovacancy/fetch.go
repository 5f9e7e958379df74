package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/asyncdata"
	"github.com/zerovacancy/zerovacancy/internal/client"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Read marketplace data",
	Long:  `Commands for reading creators, projects, applications and bookings from the API.`,
}

var fetchProjectsCmd = &cobra.Command{
	Use:   "projects [id]",
	Short: "List projects, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFetchProjects,
}

var fetchApplicationsCmd = &cobra.Command{
	Use:   "applications [id]",
	Short: "List applications, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFetchApplications,
}

var fetchCreatorsCmd = &cobra.Command{
	Use:   "creators [id]",
	Short: "List creators, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFetchCreators,
}

var fetchBookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List bookings",
	RunE:  runFetchBookings,
}

var fetchDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Load the signed-in user's dashboard",
	RunE:  runFetchDashboard,
}

var (
	fetchStatus    string
	fetchProjectID string
	fetchLimit     int
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchProjectsCmd)
	fetchCmd.AddCommand(fetchApplicationsCmd)
	fetchCmd.AddCommand(fetchCreatorsCmd)
	fetchCmd.AddCommand(fetchBookingsCmd)
	fetchCmd.AddCommand(fetchDashboardCmd)

	fetchCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON")
	fetchProjectsCmd.Flags().StringVar(&fetchStatus, "status", "", "filter by status (open, in_progress, ...)")
	fetchProjectsCmd.Flags().IntVar(&fetchLimit, "limit", 0, "maximum number of projects")
	fetchApplicationsCmd.Flags().StringVar(&fetchProjectID, "project", "", "filter by project ID")
	fetchApplicationsCmd.Flags().StringVar(&fetchStatus, "status", "", "filter by status")
	fetchBookingsCmd.Flags().StringVar(&fetchProjectID, "project", "", "filter by project ID")
}

// fetchOnce runs producer through a Fetcher so failures are announced the
// same way the dashboard announces them.
func fetchOnce[T any](ctx context.Context, env *clientEnv, name, fallback string, producer asyncdata.Producer[T]) (T, error) {
	run := false
	f := asyncdata.NewFetcher(producer, asyncdata.FetchOptions[T]{
		RunImmediately:  &run,
		Announcer:       env.announcer,
		FallbackMessage: fallback,
		Logger:          env.log,
		Name:            name,
	})
	defer f.Close()
	return f.Refetch(ctx)
}

func runFetchProjects(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, env *clientEnv) error {
		if len(args) == 1 {
			p, err := fetchOnce(ctx, env, "fetch.project", "Could not load project",
				func(ctx context.Context) (*core.Project, error) { return env.backend.GetProject(ctx, args[0]) })
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(p)
			}
			fmt.Printf("%s (%s)\n", p.Title, p.Status)
			fmt.Printf("  Address:  %s\n", p.PropertyAddress)
			fmt.Printf("  Budget:   %s\n", formatCents(p.Budget))
			fmt.Printf("  Deadline: %s\n", p.Deadline.Format("2006-01-02"))
			fmt.Printf("  %s\n", p.Description)
			return nil
		}

		filter := marketplace.ProjectFilter{Status: core.ProjectStatus(fetchStatus), Limit: fetchLimit}
		projects, err := fetchOnce(ctx, env, "fetch.projects", "Could not load projects",
			func(ctx context.Context) ([]core.Project, error) { return env.backend.ListProjects(ctx, filter) })
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(projects)
		}
		printProjects(projects)
		env.log.Info("projects listed", zap.Int("count", len(projects)))
		return nil
	})
}

func runFetchApplications(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, env *clientEnv) error {
		if len(args) == 1 {
			a, err := fetchOnce(ctx, env, "fetch.application", "Could not load application",
				func(ctx context.Context) (*core.Application, error) { return env.backend.GetApplication(ctx, args[0]) })
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(a)
			}
			fmt.Printf("%s -> project %s (%s)\n", a.CreatorName, a.ProjectID, a.Status)
			fmt.Printf("  Rate: %s\n", formatCents(a.ProposedRate))
			fmt.Printf("  %s\n", a.Message)
			return nil
		}

		filter := marketplace.ApplicationFilter{ProjectID: fetchProjectID, Status: core.ApplicationStatus(fetchStatus)}
		apps, err := fetchOnce(ctx, env, "fetch.applications", "Could not load applications",
			func(ctx context.Context) ([]core.Application, error) { return env.backend.ListApplications(ctx, filter) })
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(apps)
		}
		printApplications(apps)
		return nil
	})
}

func runFetchCreators(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, env *clientEnv) error {
		if len(args) == 1 {
			c, err := fetchOnce(ctx, env, "fetch.creator", "Could not load creator",
				func(ctx context.Context) (*core.Creator, error) { return env.backend.GetCreator(ctx, args[0]) })
			if err != nil {
				return err
			}
			return printJSON(c)
		}

		creators, err := fetchOnce(ctx, env, "fetch.creators", "Could not load creators", env.backend.ListCreators)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(creators)
		}
		if len(creators) == 0 {
			fmt.Println("No creators found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLOCATION\tRATING\tRATE/HR\tVERIFIED\t")
		for _, c := range creators {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%t\t\n",
				c.ID, c.Name, c.Location, c.Rating, formatCents(c.HourlyRate), c.Verified)
		}
		return w.Flush()
	})
}

func runFetchBookings(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, env *clientEnv) error {
		user, err := env.currentUser(ctx)
		if err != nil {
			return err
		}
		filter := marketplace.BookingFilter{ProjectID: fetchProjectID}
		switch user.Role {
		case core.RolePropertyManager:
			filter.ManagerID = user.ID
		case core.RoleCreator:
			filter.CreatorID = user.ID
		}

		bookings, err := fetchOnce(ctx, env, "fetch.bookings", "Could not load bookings",
			func(ctx context.Context) ([]core.Booking, error) { return env.backend.ListBookings(ctx, filter) })
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(bookings)
		}
		printBookings(bookings)
		return nil
	})
}

func runFetchDashboard(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, env *clientEnv) error {
		user, err := env.currentUser(ctx)
		if err != nil {
			return err
		}

		d, err := client.LoadDashboard(ctx, env.backend, client.DashboardOptions{
			User:      user,
			Announcer: env.announcer,
			Logger:    env.log,
		})
		if jsonOutput {
			if printErr := printJSON(d); printErr != nil {
				return printErr
			}
			return err
		}

		if user.ID != "" {
			fmt.Printf("Signed in as %s (%s)\n\n", user.Email, user.Role)
		}
		fmt.Println("Projects")
		printProjects(d.Projects)
		fmt.Println("\nApplications")
		printApplications(d.Applications)
		if user.ID != "" {
			fmt.Println("\nBookings")
			printBookings(d.Bookings)
		}
		return err
	})
}

func printProjects(projects []core.Project) {
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tBUDGET\tDEADLINE\t")
	fmt.Fprintln(w, "--\t-----\t------\t------\t--------\t")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			p.ID, p.Title, p.Status, formatCents(p.Budget), p.Deadline.Format("2006-01-02"))
	}
	w.Flush()
}

func printApplications(apps []core.Application) {
	if len(apps) == 0 {
		fmt.Println("No applications found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tCREATOR\tRATE\tSTATUS\tSUBMITTED\t")
	fmt.Fprintln(w, "--\t-------\t-------\t----\t------\t---------\t")
	for _, a := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			a.ID, a.ProjectID, a.CreatorName, formatCents(a.ProposedRate), a.Status,
			a.SubmittedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func printBookings(bookings []core.Booking) {
	if len(bookings) == 0 {
		fmt.Println("No bookings found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tCREATOR\tWHEN\tDURATION\tSTATUS\t")
	fmt.Fprintln(w, "--\t-------\t-------\t----\t--------\t------\t")
	for _, b := range bookings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			b.ID, b.ProjectID, b.CreatorID, b.ScheduledFor.Format("2006-01-02 15:04"), b.Duration, b.Status)
	}
	w.Flush()
}
