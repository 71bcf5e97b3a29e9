package listing

import "carrental-client/internal/model"

// Kind names the current variant of a listing State
type Kind string

const (
	KindIdle      Kind = "idle"
	KindLoading   Kind = "loading"
	KindSuccess   Kind = "success"
	KindPaginated Kind = "paginated_success"
	KindSingle    Kind = "single_item"
	KindError     Kind = "error"
)

// State is what the listing currently shows. Only the field matching Kind
// is set: Items for KindSuccess, Page for KindPaginated, Car for KindSingle
// and Err for KindError.
type State struct {
	Kind  Kind
	Items []model.Car
	Page  *model.Page[model.Car]
	Car   *model.Car
	Err   *model.Error
}

func Idle() State {
	return State{Kind: KindIdle}
}

func Loading() State {
	return State{Kind: KindLoading}
}

func Success(items []model.Car) State {
	if items == nil {
		items = []model.Car{}
	}
	return State{Kind: KindSuccess, Items: items}
}

func Paginated(page *model.Page[model.Car]) State {
	return State{Kind: KindPaginated, Page: page}
}

func Single(car *model.Car) State {
	return State{Kind: KindSingle, Car: car}
}

func Failed(err *model.Error) State {
	return State{Kind: KindError, Err: err}
}

// Cars returns the cars visible in the state, whatever its variant
func (s State) Cars() []model.Car {
	switch s.Kind {
	case KindSuccess:
		return s.Items
	case KindPaginated:
		if s.Page != nil {
			return s.Page.Content
		}
	case KindSingle:
		if s.Car != nil {
			return []model.Car{*s.Car}
		}
	}
	return nil
}

// Message is the user-facing text of an error state
func (s State) Message() string {
	if s.Kind != KindError || s.Err == nil {
		return ""
	}
	if s.Err.Message != "" {
		return s.Err.Message
	}
	return s.Err.Error()
}

// withFavorite returns a copy of the state where the car with the given id
// carries the favorite flag. ok is false when no visible car matches.
func (s State) withFavorite(carID int64, favorite bool) (State, bool) {
	patch := func(cars []model.Car) ([]model.Car, bool) {
		out := make([]model.Car, len(cars))
		found := false
		for i, car := range cars {
			if car.ID == carID {
				car = car.WithFavorite(favorite)
				found = true
			}
			out[i] = car
		}
		return out, found
	}

	switch s.Kind {
	case KindSuccess:
		items, ok := patch(s.Items)
		if !ok {
			return s, false
		}
		return Success(items), true

	case KindPaginated:
		if s.Page == nil {
			return s, false
		}
		content, ok := patch(s.Page.Content)
		if !ok {
			return s, false
		}
		page := *s.Page
		page.Content = content
		return Paginated(&page), true

	case KindSingle:
		if s.Car == nil || s.Car.ID != carID {
			return s, false
		}
		car := s.Car.WithFavorite(favorite)
		return Single(&car), true
	}

	return s, false
}
