package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/moa/storefront/internal/http"
	"github.com/moa/storefront/internal/log"
	"github.com/moa/storefront/internal/middleware"
	"github.com/moa/storefront/internal/otel"

	"github.com/moa/storefront/cart/internal/domain"
	"github.com/moa/storefront/cart/internal/service"
	"github.com/moa/storefront/cart/pkg/request"
	"github.com/moa/storefront/cart/pkg/response"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(router *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	carts := router.PathPrefix("/carts").Subrouter()
	carts.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	carts.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	carts.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	carts.HandleFunc("/items/{itemId}", controller.UpdateItem).Methods(http.MethodPut)
	carts.HandleFunc("/items/{itemId}", controller.RemoveItem).Methods(http.MethodDelete)
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
		Logger()

	customerKey, err := middleware.CustomerKeyFromContext(c)
	if err != nil {
		writeError(c, w, span, err)
		return
	}
	logger = logger.With().Str(log.KeyCustomerKey, customerKey).Logger()

	logger.Info().Msg("getting cart")
	c = logger.WithContext(c)
	cart, err := t.service.GetCart(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed getting cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, span, err)
		return
	}
	logger.Info().Msg("got cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart found",
		"data": map[string]interface{}{
			"cart": response.NewCart(cart),
		},
	})
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	customerKey, err := middleware.CustomerKeyFromContext(c)
	if err != nil {
		writeError(c, w, span, err)
		return
	}
	logger = logger.With().Str(log.KeyCustomerKey, customerKey).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.AddItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeBadRequest(c, w, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeBadRequest(c, w, err)
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "adding item").
		Str(log.KeyProductID, reqBody.ProductID).
		Int32(log.KeyQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	cart, err := t.service.AddItem(c, customerKey, domain.CartItem{
		ProductID:      reqBody.ProductID,
		Name:           reqBody.Name,
		ImageURL:       reqBody.ImageURL,
		Category:       reqBody.Category,
		UnitPriceMinor: reqBody.UnitPriceMinor,
	}, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed adding item to cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, span, err)
		return
	}
	logger.Info().Msg("added item to cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "item added to cart",
		"data": map[string]interface{}{
			"cart": response.NewCart(cart),
		},
	})
}

func (t CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateItem").
		Logger()

	customerKey, err := middleware.CustomerKeyFromContext(c)
	if err != nil {
		writeError(c, w, span, err)
		return
	}
	itemID := mux.Vars(r)["itemId"]
	logger = logger.With().
		Str(log.KeyCustomerKey, customerKey).
		Str(log.KeyItemID, itemID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.UpdateItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeBadRequest(c, w, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().
		Str(log.KeyProcess, "updating item").
		Int32(log.KeyQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("updating cart item")
	c = logger.WithContext(c)
	cart, err := t.service.UpdateItem(c, customerKey, itemID, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed updating cart item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, span, err)
		return
	}
	logger.Info().Msg("updated cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart item updated",
		"data": map[string]interface{}{
			"cart": response.NewCart(cart),
		},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	customerKey, err := middleware.CustomerKeyFromContext(c)
	if err != nil {
		writeError(c, w, span, err)
		return
	}
	itemID := mux.Vars(r)["itemId"]
	logger = logger.With().
		Str(log.KeyCustomerKey, customerKey).
		Str(log.KeyItemID, itemID).
		Logger()

	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	cart, err := t.service.RemoveItem(c, customerKey, itemID)
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, span, err)
		return
	}
	logger.Info().Msg("removed cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart item removed",
		"data": map[string]interface{}{
			"cart": response.NewCart(cart),
		},
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Logger()

	customerKey, err := middleware.CustomerKeyFromContext(c)
	if err != nil {
		writeError(c, w, span, err)
		return
	}
	logger = logger.With().Str(log.KeyCustomerKey, customerKey).Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	cart, err := t.service.ClearCart(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, span, err)
		return
	}
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart cleared",
		"data": map[string]interface{}{
			"cart": response.NewCart(cart),
		},
	})
}
