// ABOUTME: Maps repository errors to user-visible notifications.
// ABOUTME: Front-ends render the title, description and severity as they see fit.
package workouts

import (
	"errors"
	"fmt"
)

// Severity ranks a notification for display.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the display form of an error.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

func (n Notification) String() string {
	return fmt.Sprintf("%s: %s", n.Title, n.Description)
}

// Notify converts err into a Notification. A nil error yields the zero value.
func Notify(err error) Notification {
	if err == nil {
		return Notification{}
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		authErr       *AuthorizationError
		storeErr      *StoreError
	)

	switch {
	case errors.As(err, &validationErr):
		return Notification{
			Title:       "Invalid input",
			Description: fmt.Sprintf("%s %s.", validationErr.Field, validationErr.Reason),
			Severity:    SeverityWarning,
		}
	case errors.As(err, &notFoundErr):
		return Notification{
			Title:       "Not found",
			Description: fmt.Sprintf("No %s matches %s.", notFoundErr.Kind, notFoundErr.ID),
			Severity:    SeverityError,
		}
	case errors.As(err, &authErr):
		return Notification{
			Title:       "Not allowed",
			Description: authErr.Error(),
			Severity:    SeverityError,
		}
	case errors.As(err, &storeErr):
		n := Notification{
			Title:       "Storage error",
			Description: storeErr.Err.Error(),
			Severity:    SeverityError,
		}
		if storeErr.Incomplete {
			n.Title = "Save incomplete"
			n.Description = fmt.Sprintf("%s did not finish: %v", storeErr.Op, storeErr.Err)
		}
		return n
	default:
		return Notification{
			Title:       "Something went wrong",
			Description: err.Error(),
			Severity:    SeverityError,
		}
	}
}
