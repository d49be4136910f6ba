package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ticketcheck/ticket-check/internal/config"
	"github.com/ticketcheck/ticket-check/internal/domain"
	"github.com/ticketcheck/ticket-check/internal/events"
	"github.com/ticketcheck/ticket-check/internal/observability"
	"github.com/ticketcheck/ticket-check/internal/repository"
	"github.com/ticketcheck/ticket-check/internal/service"
	"github.com/ticketcheck/ticket-check/internal/storage"
)

const usage = `ticket-check — local ticket tracker

Usage:
  ticket-check register  --name NAME --email EMAIL --phone PHONE --password PASS
  ticket-check login     --email EMAIL --password PASS
  ticket-check logout
  ticket-check whoami
  ticket-check users
  ticket-check ticket create  --title T --deadline DATE [--details D] [--requester R]
  ticket-check ticket list    [--status STATUS]
  ticket-check ticket show    --id ID
  ticket-check ticket update  --id ID [--title T] [--details D] [--requester R]
                              [--deadline DATE] [--status STATUS]
                              [--provider P] [--closing-details D]
  ticket-check ticket close   --id ID --provider P --closing-details D [--status STATUS]
  ticket-check ticket delete  --id ID
  ticket-check ticket metrics

Dates accept 02/01/2006, 2006-01-02 or a full RFC 3339 timestamp.
Statuses: ABERTO, ACEITO, ENCERRADO, CANCELADO, IMPROCEDENTE.`

type app struct {
	logger  *zap.Logger
	users   repository.UsersRepository
	tickets repository.TicketsRepository
	auth    *service.AuthService
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Println(usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	instrumented := storage.Instrument(store, metrics)

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventAny, func(_ context.Context, ev events.Event) {
		logger.Debug("change event",
			zap.String("type", string(ev.Type)),
			zap.String("entityId", ev.EntityID))
	})

	users := repository.NewUsersRepository(instrumented, dispatcher, logger)
	tickets := repository.NewTicketsRepository(instrumented, dispatcher, logger)
	session := storage.NewSessionStore(instrumented, logger)

	a := &app{
		logger:  logger,
		users:   users,
		tickets: tickets,
		auth:    service.NewAuthService(users, session, dispatcher, logger),
	}

	ctx := context.Background()
	switch args[0] {
	case "register":
		return a.register(ctx, args[1:])
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "users":
		return a.listUsers(ctx)
	case "ticket":
		return a.ticket(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q (try \"ticket-check help\")", args[0])
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case "sqlite":
		store, err := storage.NewSQLiteStore(context.Background(), cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	case "redis":
		store := storage.NewRedisStore(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, logger)
		return store, func() { _ = store.Close() }, nil
	case "memory":
		return storage.NewMemoryStore(), noop, nil
	default:
		store, err := storage.NewFileStore(cfg.Storage.DataDir, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone, format (00) 00000-0000")
	password := fs.String("password", "", "password, 6-12 characters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, domain.CreateUserInput{
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.SignIn(ctx, domain.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("no active session")
		return nil
	}
	printUser(*user)
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("no users")
		return nil
	}
	for _, user := range users {
		fmt.Printf("%s  %s <%s>\n", user.ID, user.Name, user.Email)
	}
	return nil
}

func (a *app) ticket(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing ticket subcommand (try \"ticket-check help\")")
	}
	switch args[0] {
	case "create":
		return a.ticketCreate(ctx, args[1:])
	case "list":
		return a.ticketList(ctx, args[1:])
	case "show":
		return a.ticketShow(ctx, args[1:])
	case "update":
		return a.ticketUpdate(ctx, args[1:], nil)
	case "close":
		closed := domain.TicketStatusClosed
		return a.ticketUpdate(ctx, args[1:], &closed)
	case "delete":
		return a.ticketDelete(ctx, args[1:])
	case "metrics":
		return a.ticketMetrics(ctx)
	default:
		return fmt.Errorf("unknown ticket subcommand %q", args[0])
	}
}

func (a *app) ticketCreate(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("ticket create", pflag.ContinueOnError)
	title := fs.String("title", "", "short summary")
	details := fs.String("details", "", "full description")
	requester := fs.String("requester", "", "who opened the ticket")
	deadline := fs.String("deadline", "", "due date")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsedDeadline, err := parseDeadline(*deadline)
	if err != nil {
		return err
	}
	if *requester == "" {
		if user, err := a.auth.CurrentUser(ctx); err == nil && user != nil {
			*requester = user.Name
		}
	}

	ticket, err := a.tickets.Create(ctx, domain.CreateTicketInput{
		Title:     *title,
		Details:   *details,
		Requester: *requester,
		Deadline:  parsedDeadline,
	})
	if err != nil {
		return err
	}
	printTicket(*ticket)
	return nil
}

func (a *app) ticketList(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("ticket list", pflag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		tickets []domain.Ticket
		err     error
	)
	if *status != "" {
		tickets, err = a.tickets.ListByStatus(ctx, domain.TicketStatus(*status))
	} else {
		tickets, err = a.tickets.List(ctx)
	}
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		fmt.Println("no tickets")
		return nil
	}
	for _, ticket := range tickets {
		fmt.Printf("%s  [%s]  %s  (due %s)\n",
			ticket.ID, ticket.Status, ticket.Title, ticket.Deadline.Format("02/01/2006"))
	}
	return nil
}

func (a *app) ticketShow(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("ticket show", pflag.ContinueOnError)
	id := fs.String("id", "", "ticket id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ticket, err := a.tickets.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if ticket == nil {
		fmt.Println("ticket not found")
		return nil
	}
	printTicket(*ticket)
	return nil
}

// ticketUpdate serves both "update" and "close"; close pre-selects the
// ENCERRADO status but still honors an explicit --status flag.
func (a *app) ticketUpdate(ctx context.Context, args []string, preset *domain.TicketStatus) error {
	fs := pflag.NewFlagSet("ticket update", pflag.ContinueOnError)
	id := fs.String("id", "", "ticket id")
	title := fs.String("title", "", "short summary")
	details := fs.String("details", "", "full description")
	requester := fs.String("requester", "", "who opened the ticket")
	deadline := fs.String("deadline", "", "due date")
	status := fs.String("status", "", "new status")
	provider := fs.String("provider", "", "who handled the ticket")
	closingDetails := fs.String("closing-details", "", "closing audit note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := domain.UpdateTicketInput{Status: preset}
	if fs.Changed("title") {
		input.Title = title
	}
	if fs.Changed("details") {
		input.Details = details
	}
	if fs.Changed("requester") {
		input.Requester = requester
	}
	if fs.Changed("deadline") {
		parsed, err := parseDeadline(*deadline)
		if err != nil {
			return err
		}
		input.Deadline = &parsed
	}
	if fs.Changed("status") {
		st := domain.TicketStatus(*status)
		input.Status = &st
	}
	if fs.Changed("provider") {
		input.Provider = provider
	}
	if fs.Changed("closing-details") {
		input.ClosingDetails = closingDetails
	}

	ticket, err := a.tickets.Update(ctx, *id, input)
	if err != nil {
		return err
	}
	if ticket == nil {
		fmt.Println("ticket not found")
		return nil
	}
	printTicket(*ticket)
	return nil
}

func (a *app) ticketDelete(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("ticket delete", pflag.ContinueOnError)
	id := fs.String("id", "", "ticket id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deleted, err := a.tickets.Delete(ctx, *id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Println("ticket not found")
		return nil
	}
	fmt.Println("ticket deleted")
	return nil
}

func (a *app) ticketMetrics(ctx context.Context) error {
	metrics, err := a.tickets.Metrics(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("total: %d\n", metrics.TotalCount)
	for _, status := range domain.AllTicketStatuses() {
		fmt.Printf("  %-13s %d\n", status, metrics.ByStatus[status])
	}
	if metrics.AvgClosingTimeMinutes == nil {
		fmt.Println("avg closing time: n/a")
	} else {
		fmt.Printf("avg closing time: %s minutes\n",
			strconv.FormatFloat(*metrics.AvgClosingTimeMinutes, 'f', -1, 64))
	}
	return nil
}

func printUser(user domain.User) {
	fmt.Printf("id:      %s\n", user.ID)
	fmt.Printf("name:    %s\n", user.Name)
	fmt.Printf("email:   %s\n", user.Email)
	fmt.Printf("phone:   %s\n", user.Phone)
	fmt.Printf("since:   %s\n", user.CreatedAt.Format("02/01/2006"))
}

func printTicket(ticket domain.Ticket) {
	fmt.Printf("id:        %s\n", ticket.ID)
	fmt.Printf("title:     %s\n", ticket.Title)
	fmt.Printf("status:    %s\n", ticket.Status)
	if ticket.Details != "" {
		fmt.Printf("details:   %s\n", ticket.Details)
	}
	if ticket.Requester != "" {
		fmt.Printf("requester: %s\n", ticket.Requester)
	}
	fmt.Printf("deadline:  %s\n", ticket.Deadline.Format("02/01/2006"))
	if ticket.Provider != "" {
		fmt.Printf("provider:  %s\n", ticket.Provider)
	}
	if ticket.ClosingDetails != "" {
		fmt.Printf("closed:    %s\n", ticket.ClosingDetails)
	}
	fmt.Printf("created:   %s\n", ticket.CreatedAt.Format(time.RFC3339))
	fmt.Printf("updated:   %s\n", ticket.UpdatedAt.Format(time.RFC3339))
}

// parseDeadline accepts a Brazilian dd/mm/yyyy date, a bare ISO date or a
// full RFC 3339 timestamp and normalizes to the stored representation.
func parseDeadline(value string) (string, error) {
	input := strings.TrimSpace(value)
	if input == "" {
		return "", nil
	}
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, input); err == nil {
			return domain.FormatTimestamp(t), nil
		}
	}
	if t, err := domain.ParseTimestamp(input); err == nil {
		return domain.FormatTimestamp(t), nil
	}
	return "", fmt.Errorf("invalid deadline %q: use 02/01/2006, 2006-01-02 or an RFC 3339 timestamp", input)
}
