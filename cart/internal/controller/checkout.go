package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/moa/storefront/internal/http"
	"github.com/moa/storefront/internal/log"
	"github.com/moa/storefront/internal/middleware"
	"github.com/moa/storefront/internal/otel"

	"github.com/moa/storefront/cart/internal/service"
	"github.com/moa/storefront/cart/pkg/response"
)

type CheckoutController struct {
	service *service.CheckoutService
}

func AttachCheckoutController(router *mux.Router, service *service.CheckoutService) {
	controller := CheckoutController{service: service}
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
}

func (t CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Checkout").
		Logger()

	customerKey, err := middleware.CustomerKeyFromContext(c)
	if err != nil {
		writeError(c, w, span, err)
		return
	}
	logger = logger.With().Str(log.KeyCustomerKey, customerKey).Logger()

	logger.Info().Msg("checking out cart")
	c = logger.WithContext(c)
	order, err := t.service.Checkout(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed checking out cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, span, err)
		return
	}
	logger.Info().Str(log.KeyOrderCode, order.Code).Msg("checked out cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "order created",
		"data": map[string]interface{}{
			"order": response.NewOrder(order),
		},
	})
}
