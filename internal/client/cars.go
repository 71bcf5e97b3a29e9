package client

import (
	"context"
	"fmt"
	"net/http"

	"carrental-client/internal/model"
)

// ListAll fetches the unfiltered car listing
func (c *CarClient) ListAll(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	err := c.do(ctx, request{
		op:     "cars.ListAll",
		method: http.MethodGet,
		path:   "/api/cars",
	}, &cars)
	if err != nil {
		return nil, err
	}

	if cars == nil {
		cars = []model.Car{}
	}
	return cars, nil
}

// ListPaged fetches one page of a filtered listing. An empty body or a
// page without a size is a decode error.
func (c *CarClient) ListPaged(ctx context.Context, q model.PageQuery) (*model.Page[model.Car], error) {
	const op = "cars.ListPaged"

	var page *model.Page[model.Car]
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   "/api/cars/paged",
		query:  q.Values(),
	}, &page)
	if err != nil {
		return nil, err
	}

	if page == nil || page.Size <= 0 {
		return nil, &model.Error{Op: op, Kind: model.KindDecode, Status: http.StatusOK, Message: "missing page in response"}
	}
	if err := page.Validate(); err != nil {
		return nil, &model.Error{Op: op, Kind: model.KindDecode, Message: "invalid page", Err: err}
	}
	if page.Content == nil {
		page.Content = []model.Car{}
	}

	return page, nil
}

// GetByID fetches a single car. An empty or null body counts as not found.
func (c *CarClient) GetByID(ctx context.Context, id int64) (*model.Car, error) {
	const op = "cars.GetByID"

	var car *model.Car
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/cars/%d", id),
	}, &car)
	if err != nil {
		return nil, err
	}

	if car == nil {
		return nil, &model.Error{Op: op, Kind: model.KindNotFound, Status: http.StatusOK, Message: fmt.Sprintf("car %d not found", id)}
	}
	return car, nil
}
