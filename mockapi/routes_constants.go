package mockapi

const APIPrefix = "/api/v1"

const (
	RouteAuthLogin   = APIPrefix + "/auth/login"
	RouteAuthRefresh = APIPrefix + "/auth/refresh"

	RouteUsersMe            = APIPrefix + "/users/me"
	RouteUsers              = APIPrefix + "/users"
	RouteUser               = APIPrefix + "/users/{id}"
	RouteUserActivate       = APIPrefix + "/users/{id}/activate"
	RouteUserDeactivate     = APIPrefix + "/users/{id}/deactivate"
	RouteUserResetPassword  = APIPrefix + "/users/{id}/reset-password"
	RouteUnits              = APIPrefix + "/units"
	RouteUnit               = APIPrefix + "/units/{id}"
	RouteCommonAreas        = APIPrefix + "/common-areas"
	RouteCommonArea         = APIPrefix + "/common-areas/{id}"
	RouteReservations       = APIPrefix + "/reservations"
	RouteReservationsRange  = APIPrefix + "/reservations/date-range"
	RouteReservationsByArea = APIPrefix + "/reservations/common-area/{area_id}"
	RouteReservation        = APIPrefix + "/reservations/{id}"
	RouteReservationAction  = APIPrefix + "/reservations/{id}/{action}"
	RouteReservationIssue   = APIPrefix + "/reservations/{id}/report-issue"

	RouteNotifications          = APIPrefix + "/notifications"
	RouteNotificationsUnread    = APIPrefix + "/notifications/unread/count"
	RouteNotificationsReadAll   = APIPrefix + "/notifications/read-all"
	RouteNotification           = APIPrefix + "/notifications/{id}"
	RouteNotificationAction     = APIPrefix + "/notifications/{id}/{action}"
	RouteDocuments              = APIPrefix + "/documents"
	RouteDocumentsUpload        = APIPrefix + "/documents/upload"
	RouteDocument               = APIPrefix + "/documents/{id}"
	RouteDocumentSub            = APIPrefix + "/documents/{id}/{sub}"
	RouteImports                = APIPrefix + "/imports"
	RouteImportsPreview         = APIPrefix + "/imports/preview"
	RouteImportsUpload          = APIPrefix + "/imports/upload"
	RouteImport                 = APIPrefix + "/imports/{id}"
	RouteAIChat                 = APIPrefix + "/ai/chat"
	RouteAIConversations        = APIPrefix + "/ai/conversations"
	RouteAIConversation         = APIPrefix + "/ai/conversations/{id}"
	RouteAIConversationMessages = APIPrefix + "/ai/conversations/{id}/messages"
	RouteAIConversationArchive  = APIPrefix + "/ai/conversations/{id}/archive"
	RouteAIUsage                = APIPrefix + "/ai/usage"
)
