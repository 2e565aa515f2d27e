package messagely

import (
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ControllerRoutes holds the mount points of the controller
type ControllerRoutes struct {
	Auth     string
	Users    string
	Messages string
	Health   string
}

// Controller exposes the auth, users and messages endpoints
type Controller struct {
	Logger       Logger
	Auther       Authenticator
	Users        Directory
	Messages     MessageStore
	ActivitySink ActivitySink
	ContextKey   string
	Routes       *ControllerRoutes
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerAuther(auther Authenticator) ControllerOption {
	return func(c *Controller) *Controller {
		c.Auther = auther
		return c
	}
}

func WithControllerDirectory(users Directory) ControllerOption {
	return func(c *Controller) *Controller {
		c.Users = users
		return c
	}
}

func WithControllerMessages(messages MessageStore) ControllerOption {
	return func(c *Controller) *Controller {
		c.Messages = messages
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) ControllerOption {
	return func(c *Controller) *Controller {
		c.ActivitySink = normalizeActivitySink(sink)
		return c
	}
}

func WithControllerContextKey(key string) ControllerOption {
	return func(c *Controller) *Controller {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:       defLogger(),
		ActivitySink: noopActivitySink{},
		ContextKey:   DefaultContextKey,
		Routes: &ControllerRoutes{
			Auth:     "/auth",
			Users:    "/users",
			Messages: "/messages",
			Health:   "/health",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in messagely controller...")
	}

	if c.Users == nil {
		panic("Missing Directory in messagely controller...")
	}

	if c.Messages == nil {
		panic("Missing MessageStore in messagely controller...")
	}

	return c
}

// RegisterRoutes mounts the controller on app. IdentityMiddleware must be
// registered on app before this call.
func RegisterRoutes[T any](app router.Router[T], opts ...ControllerOption) *Controller {
	c := NewController(opts...)
	authenticated := EnsureAuthenticated(c.ContextKey)
	owner := EnsureIsResourceOwner("username", c.ContextKey)

	app.Get(c.Routes.Health, c.Health).SetName("health.get")

	auth := app.Group(c.Routes.Auth)
	auth.Post("/login", c.Login).SetName("auth.login")
	auth.Post("/register", c.Register).SetName("auth.register")

	users := app.Group(c.Routes.Users)
	users.Get("/", c.ListUsers, authenticated).SetName("users.list")
	users.Get("/:username", c.GetUser, owner).SetName("users.get")
	users.Get("/:username/to", c.MessagesTo, owner).SetName("users.messages_to")
	users.Get("/:username/from", c.MessagesFrom, owner).SetName("users.messages_from")

	messages := app.Group(c.Routes.Messages)
	messages.Get("/:id", c.GetMessage, authenticated).SetName("messages.get")
	messages.Post("/", c.CreateMessage, authenticated).SetName("messages.create")
	messages.Post("/:id/read", c.MarkRead, authenticated).SetName("messages.read")

	return c
}

func (a *Controller) Health(c router.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}

func (a *Controller) Login(c router.Context) error {
	payload := LoginMessage{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, err := a.Auther.Login(c.Context(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"token": token})
}

func (a *Controller) Register(c router.Context) error {
	payload := RegisterUserMessage{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	token, err := a.Auther.Register(c.Context(), payload)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"token": token})
}

func (a *Controller) ListUsers(c router.Context) error {
	records, err := a.Users.List(c.Context())
	if err != nil {
		return err
	}

	users := make([]*UserSummary, 0, len(records))
	for _, record := range records {
		users = append(users, record.Summary())
	}

	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

func (a *Controller) GetUser(c router.Context) error {
	user, err := a.Users.GetByUsername(c.Context(), c.Param("username", ""))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user.Detail()})
}

func (a *Controller) MessagesTo(c router.Context) error {
	records, err := a.Messages.ListTo(c.Context(), c.Param("username", ""))
	if err != nil {
		return err
	}

	messages := make([]InboxEntry, 0, len(records))
	for _, m := range records {
		messages = append(messages, InboxEntry{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: m.FromUser.Summary(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

func (a *Controller) MessagesFrom(c router.Context) error {
	records, err := a.Messages.ListFrom(c.Context(), c.Param("username", ""))
	if err != nil {
		return err
	}

	messages := make([]OutboxEntry, 0, len(records))
	for _, m := range records {
		messages = append(messages, OutboxEntry{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: m.ToUser.Summary(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

func (a *Controller) GetMessage(c router.Context) error {
	username, err := a.identity(c)
	if err != nil {
		return err
	}

	message, err := a.loadMessage(c)
	if err != nil {
		return err
	}

	if err := AuthorizeParticipant(username, message); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"message": message.Detail()})
}

// CreateMessagePayload is the body of POST /messages. FromUsername is
// optional and must match the authenticated user when present.
type CreateMessagePayload struct {
	ToUsername   string `json:"to_username" form:"to_username"`
	Body         string `json:"body" form:"body"`
	FromUsername string `json:"from_username" form:"from_username"`
}

// Validate will validate the payload
func (p CreateMessagePayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.ToUsername, validation.Required),
		validation.Field(&p.Body, validation.Required, validation.Length(1, 10000)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid message payload")
	}
	return nil
}

type createdMessage struct {
	ID           uuid.UUID `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

func (a *Controller) CreateMessage(c router.Context) error {
	username, err := a.identity(c)
	if err != nil {
		return err
	}

	payload := CreateMessagePayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	if err := AuthorizeSender(username, strings.TrimSpace(payload.FromUsername)); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	recipient, err := a.Users.GetByUsername(c.Context(), strings.TrimSpace(payload.ToUsername))
	if err != nil {
		return err
	}

	message, err := a.Messages.Create(c.Context(), &Message{
		FromUsername: username,
		ToUsername:   recipient.Username,
		Body:         payload.Body,
	})
	if err != nil {
		return err
	}

	emitActivity(c.Context(), a.ActivitySink, a.Logger, ActivityEventMessageSent, username, map[string]any{
		"message_id":  message.ID.String(),
		"to_username": message.ToUsername,
	})

	return c.JSON(http.StatusOK, map[string]any{"message": createdMessage{
		ID:           message.ID,
		FromUsername: message.FromUsername,
		ToUsername:   message.ToUsername,
		Body:         message.Body,
		SentAt:       message.SentAt,
	}})
}

type readMessage struct {
	ID     uuid.UUID  `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

func (a *Controller) MarkRead(c router.Context) error {
	username, err := a.identity(c)
	if err != nil {
		return err
	}

	message, err := a.loadMessage(c)
	if err != nil {
		return err
	}

	// object check before the mutation
	if err := AuthorizeRecipient(username, message); err != nil {
		return err
	}

	message, err = a.Messages.MarkRead(c.Context(), message.ID)
	if err != nil {
		return err
	}

	emitActivity(c.Context(), a.ActivitySink, a.Logger, ActivityEventMessageRead, username, map[string]any{
		"message_id": message.ID.String(),
	})

	return c.JSON(http.StatusOK, map[string]any{"message": readMessage{
		ID:     message.ID,
		ReadAt: message.ReadAt,
	}})
}

func (a *Controller) identity(c router.Context) (string, error) {
	claims, _ := CurrentClaims(c, a.ContextKey)
	return RequireIdentity(claims)
}

// loadMessage fetches the message named by the id route parameter.
// Malformed ids are reported as not found.
func (a *Controller) loadMessage(c router.Context) (*Message, error) {
	id, err := uuid.Parse(c.Param("id", ""))
	if err != nil {
		return nil, ErrMessageNotFound
	}
	return a.Messages.Get(c.Context(), id)
}
