package handler_test

import (
	"context"
	"io"

	"collection-engine/internal/domain/actor"
	"collection-engine/internal/domain/customer"
	"collection-engine/internal/domain/importer"

	"github.com/stretchr/testify/mock"
)

type MockImportService struct {
	mock.Mock
}

func (_m *MockImportService) ParseFile(ctx context.Context, who actor.Actor, r io.Reader, fileName string) (*importer.Table, error) {
	ret := _m.Called(ctx, who, r, fileName)

	var r0 *importer.Table
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*importer.Table)
	}
	return r0, ret.Error(1)
}

func (_m *MockImportService) ImportCustomers(ctx context.Context, who actor.Actor, rows []importer.Row, mode importer.Mode) (*importer.Result, error) {
	ret := _m.Called(ctx, who, rows, mode)

	var r0 *importer.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*importer.Result)
	}
	return r0, ret.Error(1)
}

func (_m *MockImportService) ImportFile(ctx context.Context, who actor.Actor, r io.Reader, fileName string, mode importer.Mode) (*importer.Result, error) {
	ret := _m.Called(ctx, who, r, fileName, mode)

	var r0 *importer.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*importer.Result)
	}
	return r0, ret.Error(1)
}

func (_m *MockImportService) MarkPaid(ctx context.Context, who actor.Actor, r io.Reader, fileName string) (*importer.Result, error) {
	ret := _m.Called(ctx, who, r, fileName)

	var r0 *importer.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*importer.Result)
	}
	return r0, ret.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, who actor.Actor, accountNumber string) (*customer.Customer, error) {
	ret := _m.Called(ctx, who, accountNumber)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, actor.Actor, string) *customer.Customer); ok {
		r0 = rf(ctx, who, accountNumber)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context, who actor.Actor, filter customer.Filter) ([]*customer.Customer, error) {
	ret := _m.Called(ctx, who, filter)

	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) AssignCustomers(ctx context.Context, who actor.Actor, callerID string, accountNumbers []string) (int, error) {
	ret := _m.Called(ctx, who, callerID, accountNumbers)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockCustomerService) RecordResponse(ctx context.Context, who actor.Actor, accountNumber, note string) (*customer.Customer, error) {
	ret := _m.Called(ctx, who, accountNumber, note)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}
