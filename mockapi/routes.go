package mockapi

func (s *Server) initRoutes() {
	api := s.APIMiddleware()
	authed := s.APIMiddleware(s.RequireAuth)
	admin := s.APIMiddleware(s.RequireAuth, s.RequireAdmin)

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), api...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUsersMe, ChainMiddleware(s.MeHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.GetUserHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteUser, ChainMiddleware(s.UpdateUserHandler(), authed...))
	s.RegisterRouteHandler("DELETE "+RouteUser, ChainMiddleware(s.DeleteUserHandler(), admin...))
	s.RegisterRouteHandler("PUT "+RouteUserActivate, ChainMiddleware(s.SetUserActiveHandler(true), admin...))
	s.RegisterRouteHandler("PUT "+RouteUserDeactivate, ChainMiddleware(s.SetUserActiveHandler(false), admin...))
	s.RegisterRouteHandler("PUT "+RouteUserResetPassword, ChainMiddleware(s.ResetPasswordHandler(), admin...))

	// UNITS AND COMMON AREAS
	s.RegisterRouteHandler("GET "+RouteUnits, ChainMiddleware(s.ListUnitsHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteUnits, ChainMiddleware(s.CreateUnitHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteUnit, ChainMiddleware(s.GetUnitHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteUnit, ChainMiddleware(s.UpdateUnitHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteUnit, ChainMiddleware(s.DeleteUnitHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteCommonAreas, ChainMiddleware(s.ListAreasHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteCommonAreas, ChainMiddleware(s.CreateAreaHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteCommonArea, ChainMiddleware(s.GetAreaHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteCommonArea, ChainMiddleware(s.UpdateAreaHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteCommonArea, ChainMiddleware(s.DeleteAreaHandler(), admin...))

	// RESERVATIONS
	s.RegisterRouteHandler("GET "+RouteReservations, ChainMiddleware(s.ListReservationsHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteReservations, ChainMiddleware(s.CreateReservationHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteReservationsRange, ChainMiddleware(s.ReservationsByDateHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteReservationsByArea, ChainMiddleware(s.ReservationsByAreaHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteReservation, ChainMiddleware(s.GetReservationHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteReservation, ChainMiddleware(s.UpdateReservationHandler(), authed...))
	s.RegisterRouteHandler("DELETE "+RouteReservation, ChainMiddleware(s.DeleteReservationHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteReservationAction, ChainMiddleware(s.ReservationActionHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteReservationIssue, ChainMiddleware(s.ReportIssueHandler(), authed...))

	// NOTIFICATIONS
	s.RegisterRouteHandler("GET "+RouteNotifications, ChainMiddleware(s.ListNotificationsHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteNotifications, ChainMiddleware(s.CreateNotificationHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteNotificationsUnread, ChainMiddleware(s.UnreadCountHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteNotificationsReadAll, ChainMiddleware(s.ReadAllHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteNotification, ChainMiddleware(s.GetNotificationHandler(), authed...))
	s.RegisterRouteHandler("DELETE "+RouteNotification, ChainMiddleware(s.DeleteNotificationHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteNotificationAction, ChainMiddleware(s.NotificationActionHandler(), authed...))

	// DOCUMENTS
	s.RegisterRouteHandler("GET "+RouteDocuments, ChainMiddleware(s.ListDocumentsHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteDocumentsUpload, ChainMiddleware(s.UploadDocumentHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteDocument, ChainMiddleware(s.GetDocumentHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteDocument, ChainMiddleware(s.UpdateDocumentHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteDocument, ChainMiddleware(s.DeleteDocumentHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteDocumentSub, ChainMiddleware(s.DocumentSubHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteDocumentSub, ChainMiddleware(s.ArchiveDocumentHandler(), admin...))

	// IMPORTS
	s.RegisterRouteHandler("GET "+RouteImports, ChainMiddleware(s.ListImportsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteImportsPreview, ChainMiddleware(s.PreviewImportHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteImportsUpload, ChainMiddleware(s.UploadImportHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteImport, ChainMiddleware(s.GetImportHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteImport, ChainMiddleware(s.DeleteImportHandler(), admin...))

	// AI ASSISTANT
	s.RegisterRouteHandler("POST "+RouteAIChat, ChainMiddleware(s.ChatHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteAIConversations, ChainMiddleware(s.ListConversationsHandler(), authed...))
	s.RegisterRouteHandler("POST "+RouteAIConversations, ChainMiddleware(s.CreateConversationHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteAIConversation, ChainMiddleware(s.GetConversationHandler(), authed...))
	s.RegisterRouteHandler("DELETE "+RouteAIConversation, ChainMiddleware(s.DeleteConversationHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteAIConversationMessages, ChainMiddleware(s.ConversationMessagesHandler(), authed...))
	s.RegisterRouteHandler("PUT "+RouteAIConversationArchive, ChainMiddleware(s.ArchiveConversationHandler(), authed...))
	s.RegisterRouteHandler("GET "+RouteAIUsage, ChainMiddleware(s.UsageHandler(), authed...))
}
