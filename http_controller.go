package tasks

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// UserRecord is the public shape of a user, password hash never included
type UserRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserDTO(user *User) UserRecord {
	return UserRecord{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

type TaskController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       *RouteAuthenticator
	ErrorHandler fiber.ErrorHandler
}

type TaskControllerOption func(*TaskController) *TaskController

func NewTaskController(opts ...TaskControllerOption) *TaskController {
	c := &TaskController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in task controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in task controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.Auther.ErrorHandler
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) TaskControllerOption {
	return func(c *TaskController) *TaskController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) TaskControllerOption {
	return func(c *TaskController) *TaskController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) TaskControllerOption {
	return func(c *TaskController) *TaskController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) TaskControllerOption {
	return func(c *TaskController) *TaskController {
		c.Debug = debug
		return c
	}
}

// RegisterRoutes mounts the API on the app. The session middleware runs only
// on the routes that need it, the admin gate only on /api/admin.
func RegisterRoutes(app *fiber.App, opts ...TaskControllerOption) *TaskController {
	controller := NewTaskController(opts...)

	api := app.Group("/api")

	api.Post("/auth/register", controller.RegistrationCreate).Name("register.post")
	api.Post("/auth/login", controller.LoginPost).Name("sign-in.post")
	api.Post("/auth/logout", controller.LogOut).Name("sign-out.post")

	protected := controller.Auther.Protected()

	api.Get("/me", protected, controller.MeShow).Name("me.get")

	api.Get("/tasks", protected, controller.TaskList).Name("tasks.list")
	api.Post("/tasks", protected, controller.TaskCreate).Name("tasks.create")
	api.Put("/tasks/:id", protected, controller.TaskUpdate).Name("tasks.update")
	api.Delete("/tasks/:id", protected, controller.TaskDelete).Name("tasks.delete")

	admin := api.Group("/admin", controller.Auther.AdminOnly())
	admin.Get("/users", controller.AdminUserList).Name("admin.users")
	admin.Get("/tasks", controller.AdminTaskList).Name("admin.tasks")

	return controller
}

// RegistrationCreatePayload is the register request body
type RegistrationCreatePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegistrationCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.Required, validation.Length(2, 80)),
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		)
	}, "Invalid registration payload")
}

func (a *TaskController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return a.ErrorHandler(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	if a.Debug {
		fmt.Println("======= REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=======================")
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	user, err := registerUser.Execute(c.UserContext(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("register user error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserDTO(user))
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login payload")
}

func (a *TaskController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, err)
	}

	if err := a.Auther.Login(c, payload.Email, payload.Password); err != nil {
		// always the generic credential error, whatever failed underneath
		return a.ErrorHandler(c, ErrMismatchedHashAndPassword)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (a *TaskController) LogOut(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (a *TaskController) MeShow(c *fiber.Ctx) error {
	session, err := a.Auther.GetSession(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	user, err := a.Auther.auth.IdentityFromSession(c.UserContext(), session)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(NewUserDTO(user))
}

// TaskCreatePayload is the create request body
type TaskCreatePayload struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Validate will run validation rules
func (r TaskCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required, validation.Length(1, 120)),
			validation.Field(&r.Description, validation.Length(0, 1000)),
		)
	}, "Invalid task payload")
}

// TaskUpdatePayload is the partial update body. Absent fields stay nil and
// leave the column untouched.
type TaskUpdatePayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

// Validate will run validation rules
func (r TaskUpdatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Length(1, 120)),
			validation.Field(&r.Description, validation.Length(0, 1000)),
		)
	}, "Invalid task payload")
}

func (a *TaskController) TaskList(c *fiber.Ctx) error {
	ownerID, err := a.sessionUserID(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	records, err := a.Repo.Tasks().ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(records)
}

func (a *TaskController) TaskCreate(c *fiber.Ctx) error {
	ownerID, err := a.sessionUserID(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	payload := new(TaskCreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, err)
	}

	record, err := a.Repo.Tasks().Create(c.UserContext(), &Task{
		UserID:      ownerID,
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		a.Logger.Error("task create error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (a *TaskController) TaskUpdate(c *fiber.Ctx) error {
	ownerID, err := a.sessionUserID(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return a.ErrorHandler(c, ErrTaskNotFound)
	}

	payload := new(TaskUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, err)
	}

	record, err := a.Repo.Tasks().UpdateOwned(c.UserContext(), ownerID, int64(taskID), TaskPatch{
		Title:       payload.Title,
		Description: payload.Description,
		Done:        payload.Done,
	})
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(record)
}

func (a *TaskController) TaskDelete(c *fiber.Ctx) error {
	ownerID, err := a.sessionUserID(c)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return a.ErrorHandler(c, ErrTaskNotFound)
	}

	if err := a.Repo.Tasks().DeleteOwned(c.UserContext(), ownerID, int64(taskID)); err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (a *TaskController) AdminUserList(c *fiber.Ctx) error {
	records, err := a.Repo.Users().List(c.UserContext())
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	out := make([]UserRecord, 0, len(records))
	for _, user := range records {
		out = append(out, NewUserDTO(user))
	}

	return c.JSON(out)
}

func (a *TaskController) AdminTaskList(c *fiber.Ctx) error {
	records, err := a.Repo.Tasks().List(c.UserContext())
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(records)
}

func (a *TaskController) sessionUserID(c *fiber.Ctx) (int64, error) {
	session, err := a.Auther.GetSession(c)
	if err != nil {
		return 0, err
	}

	return session.GetUserIDInt()
}
