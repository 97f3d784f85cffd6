package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/gateway"
	"github.com/angeloszaimis/api-gateway/internal/handler"
)

var _ = Describe("AdminHandler", func() {
	var (
		gw    *gateway.Gateway
		admin *handler.AdminHandler
	)

	BeforeEach(func() {
		gw = gateway.New(slog.Default(), nil, gateway.Options{
			HandlerTimeout: time.Second,
		})
		admin = handler.NewAdminHandler(slog.Default(), gw)
	})

	AfterEach(func() {
		gw.Close()
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, req)
		return rec
	}

	It("should register an upstream service", func() {
		rec := do(http.MethodPut, "/admin/services/UserService", `{"url":"http://localhost:8081"}`)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(gw.Services()).To(ContainElement("UserService"))
	})

	It("should reject a malformed body", func() {
		rec := do(http.MethodPut, "/admin/services/UserService", `{`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject a non-http URL", func() {
		rec := do(http.MethodPut, "/admin/services/UserService", `{"url":"ftp://host"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(gw.Services()).To(BeEmpty())
	})

	It("should unregister a service", func() {
		do(http.MethodPut, "/admin/services/UserService", `{"url":"http://localhost:8081"}`)

		rec := do(http.MethodDelete, "/admin/services/UserService", "")
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(gw.Services()).To(BeEmpty())
	})

	It("should list services with breaker state", func() {
		do(http.MethodPut, "/admin/services/UserService", `{"url":"http://localhost:8081"}`)

		rec := do(http.MethodGet, "/admin/services", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("UserService"))
	})

	It("should refuse unsupported methods", func() {
		rec := do(http.MethodPost, "/admin/services/UserService", "")
		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
