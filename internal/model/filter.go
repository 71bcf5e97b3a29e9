package model

import (
	"fmt"
	"net/url"
	"strconv"
)

type FilterKind string

const (
	FilterNone      FilterKind = "none"
	FilterBrand     FilterKind = "brand"
	FilterModel     FilterKind = "model"
	FilterRating    FilterKind = "rating"
	FilterAvailable FilterKind = "available"
)

// Filter selects one listing query variant. Fields are unexported so a
// filter can only be built through the constructors below, which keeps the
// variants mutually exclusive.
type Filter struct {
	kind      FilterKind
	text      string
	minRating float64
	maxRating float64
}

func NoFilter() Filter {
	return Filter{kind: FilterNone}
}

func ByBrand(brand string) Filter {
	return Filter{kind: FilterBrand, text: brand}
}

func ByModel(model string) Filter {
	return Filter{kind: FilterModel, text: model}
}

// ByRatingRange builds a rating filter; a reversed range is swapped
func ByRatingRange(min, max float64) Filter {
	if min > max {
		min, max = max, min
	}
	return Filter{kind: FilterRating, minRating: min, maxRating: max}
}

func AvailableOnly() Filter {
	return Filter{kind: FilterAvailable}
}

func (f Filter) Kind() FilterKind {
	if f.kind == "" {
		return FilterNone
	}
	return f.kind
}

func (f Filter) Brand() string {
	if f.kind == FilterBrand {
		return f.text
	}
	return ""
}

func (f Filter) Model() string {
	if f.kind == FilterModel {
		return f.text
	}
	return ""
}

func (f Filter) RatingRange() (min, max float64) {
	return f.minRating, f.maxRating
}

// Paged reports whether the filter is served by the paged endpoint
func (f Filter) Paged() bool {
	return f.Kind() != FilterNone
}

func (f Filter) String() string {
	switch f.Kind() {
	case FilterBrand:
		return fmt.Sprintf("brand=%q", f.text)
	case FilterModel:
		return fmt.Sprintf("model=%q", f.text)
	case FilterRating:
		return fmt.Sprintf("rating=[%g,%g]", f.minRating, f.maxRating)
	case FilterAvailable:
		return "available"
	default:
		return "none"
	}
}

// Query builds the paged query for this filter at the given cursor
func (f Filter) Query(page, size int, sort, direction string) PageQuery {
	q := PageQuery{
		Page:      page,
		Size:      size,
		Sort:      sort,
		Direction: direction,
	}

	switch f.Kind() {
	case FilterBrand:
		q.Brand = f.text
	case FilterModel:
		q.Model = f.text
	case FilterRating:
		min, max := f.minRating, f.maxRating
		q.MinRating = &min
		q.MaxRating = &max
	case FilterAvailable:
		available := true
		q.Availability = &available
	}

	return q
}

// MaxPageIndex bounds the page parameter so page*size cannot overflow
const MaxPageIndex = 1 << 20

// PageQuery carries the parameters of the paged car listing endpoint
type PageQuery struct {
	Page         int
	Size         int
	Sort         string
	Direction    string
	Brand        string
	Model        string
	MinRating    *float64
	MaxRating    *float64
	Availability *bool
}

// Values encodes the query for the wire, omitting unset parameters
func (q PageQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))

	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Direction != "" {
		v.Set("direction", q.Direction)
	}
	if q.Brand != "" {
		v.Set("brand", q.Brand)
	}
	if q.Model != "" {
		v.Set("model", q.Model)
	}
	if q.MinRating != nil {
		v.Set("minRating", strconv.FormatFloat(*q.MinRating, 'f', -1, 64))
	}
	if q.MaxRating != nil {
		v.Set("maxRating", strconv.FormatFloat(*q.MaxRating, 'f', -1, 64))
	}
	if q.Availability != nil {
		v.Set("availability", strconv.FormatBool(*q.Availability))
	}

	return v
}

// ParsePageQuery decodes wire parameters, applying defaultSize when size is
// missing or not positive
func ParsePageQuery(v url.Values, defaultSize int) (PageQuery, error) {
	q := PageQuery{
		Size:      defaultSize,
		Sort:      v.Get("sort"),
		Direction: v.Get("direction"),
		Brand:     v.Get("brand"),
		Model:     v.Get("model"),
	}

	if s := v.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 0 || page > MaxPageIndex {
			return q, fmt.Errorf("invalid page %q", s)
		}
		q.Page = page
	}

	if s := v.Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid size %q", s)
		}
		if size > 0 {
			q.Size = size
		}
	}

	if s := v.Get("minRating"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, fmt.Errorf("invalid minRating %q", s)
		}
		q.MinRating = &f
	}

	if s := v.Get("maxRating"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, fmt.Errorf("invalid maxRating %q", s)
		}
		q.MaxRating = &f
	}

	if s := v.Get("availability"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("invalid availability %q", s)
		}
		q.Availability = &b
	}

	return q, nil
}
