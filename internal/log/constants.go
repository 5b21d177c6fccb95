package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyConfig        = "config"
	KeyRequestID     = "requestId"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyCustomerKey   = "customerKey"
	KeyCartID        = "cartId"
	KeyItemID        = "itemId"
	KeyProductID     = "productId"
	KeyQuantity      = "quantity"
	KeyOrderCode     = "orderCode"
	KeySku           = "sku"
	KeyCacheKey      = "cacheKey"
	KeyDbURL         = "dbUrl"
	KeyAttempt       = "attempt"
)
