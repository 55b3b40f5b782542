// Package mocks holds a hand-maintained GoMock mock of diagnostic.Sink,
// written in the shape mockgen emits.
package mocks

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	diagnostic "github.com/fadedbee/zz/internal/diagnostic"
)

// MockSink is a mock of Sink interface.
type MockSink struct {
	ctrl     *gomock.Controller
	recorder *MockSinkMockRecorder
}

// MockSinkMockRecorder is the mock recorder for MockSink.
type MockSinkMockRecorder struct {
	mock *MockSink
}

// NewMockSink creates a new mock instance.
func NewMockSink(ctrl *gomock.Controller) *MockSink {
	mock := &MockSink{ctrl: ctrl}
	mock.recorder = &MockSinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSink) EXPECT() *MockSinkMockRecorder {
	return m.recorder
}

// Emit mocks base method.
func (m *MockSink) Emit(d diagnostic.Diagnostic) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Emit", d)
}

// Emit indicates an expected call of Emit.
func (mr *MockSinkMockRecorder) Emit(d any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Emit", reflect.TypeOf((*MockSink)(nil).Emit), d)
}
