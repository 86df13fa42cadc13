package mockapi

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-condo-client/services/ai"
	"github.com/jrsteele09/go-condo-client/services/documents"
	"github.com/jrsteele09/go-condo-client/services/imports"
	"github.com/jrsteele09/go-condo-client/services/notifications"
	"github.com/jrsteele09/go-condo-client/services/units"
	"github.com/jrsteele09/go-condo-client/users"
)

const previewRows = 10

// notify stores n, filling the fields the server owns.
func (s *Server) notify(n notifications.Notification) notifications.Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Type == "" {
		n.Type = notifications.TypeInfo
	}
	if n.Priority == "" {
		n.Priority = notifications.PriorityNormal
	}
	if n.Status == "" {
		n.Status = notifications.StatusUnread
	}
	if n.CreatedAt == "" {
		n.CreatedAt = nowString()
	}
	s.notifications.put(n.ID, n)
	return n
}

// inbox is the caller's notifications: addressed to them or broadcast to the
// tenant, archived ones excluded unless asked for.
func (s *Server) inbox(r *http.Request, match func(notifications.Notification) bool) []notifications.Notification {
	me := currentUser(r)
	return s.notifications.list(func(n notifications.Notification) bool {
		if n.TenantID != me.TenantID || (n.UserID != "" && n.UserID != me.ID) {
			return false
		}
		return match == nil || match(n)
	})
}

func (s *Server) ListNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var unread *bool
		if v := r.URL.Query().Get("unread"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeValidation(w, validationIssue{Loc: []string{"query", "unread"}, Msg: "Input should be a valid boolean", Type: "bool_parsing"})
				return
			}
			unread = &b
		}
		list := s.inbox(r, func(n notifications.Notification) bool {
			if n.Status == notifications.StatusArchived {
				return false
			}
			return unread == nil || n.Unread() == *unread
		})
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt > list[j].CreatedAt })
		writeList(w, r, list)
	}
}

func (s *Server) UnreadCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := len(s.inbox(r, func(n notifications.Notification) bool { return n.Unread() }))
		writeJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}

func (s *Server) GetNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := s.ownNotification(r)
		if !ok {
			notFound(w, "Notification")
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func (s *Server) CreateNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in notifications.CreateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		var issues []validationIssue
		if in.Title == "" {
			issues = append(issues, missingField("body", "title"))
		}
		if in.Message == "" {
			issues = append(issues, missingField("body", "message"))
		}
		if len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}
		if in.UserID != "" {
			if _, ok := s.tenantUser(r, in.UserID); !ok {
				notFound(w, "User")
				return
			}
		}

		n := s.notify(notifications.Notification{
			TenantID:    tenantOf(r),
			UserID:      in.UserID,
			Type:        in.Type,
			Priority:    in.Priority,
			Title:       in.Title,
			Message:     in.Message,
			ActionURL:   in.ActionURL,
			ActionLabel: in.ActionLabel,
			Metadata:    in.Metadata,
		})
		writeJSON(w, http.StatusCreated, n)
	}
}

func (s *Server) ReadAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unread := s.inbox(r, func(n notifications.Notification) bool { return n.Unread() })
		now := nowString()
		for _, n := range unread {
			s.notifications.update(n.ID, func(n *notifications.Notification) {
				n.Status = notifications.StatusRead
				n.IsRead = true
				n.ReadAt = now
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "All notifications marked as read", "count": len(unread)})
	}
}

func (s *Server) NotificationActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var apply func(*notifications.Notification)
		switch r.PathValue("action") {
		case "read":
			apply = func(n *notifications.Notification) {
				n.Status = notifications.StatusRead
				n.IsRead = true
				n.ReadAt = nowString()
			}
		case "archive":
			apply = func(n *notifications.Notification) {
				n.Status = notifications.StatusArchived
			}
		default:
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}

		current, ok := s.ownNotification(r)
		if !ok {
			notFound(w, "Notification")
			return
		}
		n, _ := s.notifications.update(current.ID, apply)
		writeJSON(w, http.StatusOK, n)
	}
}

func (s *Server) DeleteNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := s.ownNotification(r)
		if !ok {
			notFound(w, "Notification")
			return
		}
		s.notifications.remove(n.ID)
		writeNoContent(w)
	}
}

func (s *Server) ownNotification(r *http.Request) (notifications.Notification, bool) {
	id := r.PathValue("id")
	list := s.inbox(r, func(n notifications.Notification) bool { return n.ID == id })
	if len(list) == 0 {
		return notifications.Notification{}, false
	}
	return list[0], true
}

// visibleDocuments hides deleted documents, and private ones from residents.
func (s *Server) visibleDocuments(r *http.Request, match func(documents.Document) bool) []documents.Document {
	me := currentUser(r)
	return s.documents.list(func(d documents.Document) bool {
		if d.TenantID != me.TenantID || d.Status == documents.StatusDeleted {
			return false
		}
		if me.IsResident() && !d.IsPublic && d.UploadedBy != me.ID {
			return false
		}
		return match == nil || match(d)
	})
}

func (s *Server) ListDocumentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeList(w, r, s.visibleDocuments(r, nil))
	}
}

func (s *Server) GetDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.visibleDocument(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Document")
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// DocumentSubHandler serves /documents/category/{category} and
// /documents/{id}/download, which share a pattern.
func (s *Server) DocumentSubHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, sub := r.PathValue("id"), r.PathValue("sub")
		if id == "category" {
			category := documents.Category(sub)
			writeList(w, r, s.visibleDocuments(r, func(d documents.Document) bool { return d.Category == category }))
			return
		}
		if sub != "download" {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}

		d, ok := s.visibleDocument(r, id)
		if !ok {
			notFound(w, "Document")
			return
		}
		data, ok := s.files.get(d.ID)
		if !ok {
			notFound(w, "File")
			return
		}
		w.Header().Set("Content-Type", d.FileType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (s *Server) UploadDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, ok := readUpload(w, r)
		if !ok {
			return
		}
		category := documents.Category(r.FormValue("category"))
		if category == "" {
			category = documents.CategoryOther
		}
		if !validCategory(category) {
			writeValidation(w, validationIssue{Loc: []string{"body", "category"}, Msg: "Input should be a valid document category", Type: "enum"})
			return
		}
		isPublic, _ := strconv.ParseBool(r.FormValue("is_public"))
		var tags []string
		for _, t := range strings.Split(r.FormValue("tags"), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}

		me := currentUser(r)
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
		now := nowString()
		d := documents.Document{
			ID:           uuid.New().String(),
			TenantID:     me.TenantID,
			Name:         filename,
			Description:  r.FormValue("description"),
			FileSize:     int64(len(data)),
			FileType:     contentTypeOf(filename, data),
			DocumentType: ext,
			Category:     category,
			Status:       documents.StatusActive,
			UploadedBy:   me.ID,
			UploaderName: me.FullName,
			IsPublic:     isPublic,
			Tags:         tags,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		d.FilePath = fmt.Sprintf("uploads/%s/%s%s", me.TenantID, d.ID, filepath.Ext(filename))
		s.files.put(d.ID, data)
		s.documents.put(d.ID, d)
		writeJSON(w, http.StatusCreated, d)
	}
}

func (s *Server) UpdateDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := s.visibleDocument(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Document")
			return
		}
		var in documents.UpdateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Category != nil && !validCategory(*in.Category) {
			writeValidation(w, validationIssue{Loc: []string{"body", "category"}, Msg: "Input should be a valid document category", Type: "enum"})
			return
		}

		d, _ := s.documents.update(current.ID, func(d *documents.Document) {
			if in.Name != nil {
				d.Name = *in.Name
			}
			if in.Description != nil {
				d.Description = *in.Description
			}
			if in.Category != nil {
				d.Category = *in.Category
			}
			if in.IsPublic != nil {
				d.IsPublic = *in.IsPublic
			}
			if in.Tags != nil {
				d.Tags = in.Tags
			}
			if in.Status != nil {
				d.Status = *in.Status
			}
			d.UpdatedAt = nowString()
		})
		writeJSON(w, http.StatusOK, d)
	}
}

// ArchiveDocumentHandler serves PUT /documents/{id}/archive.
func (s *Server) ArchiveDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("sub") != "archive" {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		current, ok := s.visibleDocument(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Document")
			return
		}
		d, _ := s.documents.update(current.ID, func(d *documents.Document) {
			d.Status = documents.StatusArchived
			d.UpdatedAt = nowString()
		})
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) DeleteDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.visibleDocument(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Document")
			return
		}
		s.documents.remove(d.ID)
		s.files.remove(d.ID)
		writeNoContent(w)
	}
}

func (s *Server) visibleDocument(r *http.Request, id string) (documents.Document, bool) {
	list := s.visibleDocuments(r, func(d documents.Document) bool { return d.ID == id })
	if len(list) == 0 {
		return documents.Document{}, false
	}
	return list[0], true
}

func validCategory(c documents.Category) bool {
	switch c {
	case documents.CategoryContract, documents.CategoryInvoice, documents.CategoryMeetingMinutes,
		documents.CategoryRegulation, documents.CategoryReport, documents.CategoryOther:
		return true
	}
	return false
}

func contentTypeOf(filename string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// readUpload parses a multipart body and returns its "file" part, answering
// the error itself.
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid multipart body")
		return "", nil, false
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, missingField("body", "file"))
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read uploaded file")
		return "", nil, false
	}
	if len(data) == 0 {
		writeDetail(w, http.StatusBadRequest, "Uploaded file is empty")
		return "", nil, false
	}
	return header.Filename, data, true
}

func readCSV(data []byte) ([]string, [][]string, error) {
	rd := csv.NewReader(bytes.NewReader(data))
	rd.TrimLeadingSpace = true
	rd.FieldsPerRecord = -1
	records, err := rd.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("no header row")
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers, records[1:], nil
}

func (s *Server) ListImportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantOf(r)
		list := s.imports.list(func(j imports.Job) bool { return j.TenantID == tenant })
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt > list[j].CreatedAt })
		writeList(w, r, list)
	}
}

func (s *Server) GetImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, ok := s.imports.get(r.PathValue("id"))
		if !ok || j.TenantID != tenantOf(r) {
			notFound(w, "Import")
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

func (s *Server) DeleteImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, ok := s.imports.get(r.PathValue("id"))
		if !ok || j.TenantID != tenantOf(r) {
			notFound(w, "Import")
			return
		}
		s.imports.remove(j.ID)
		writeNoContent(w)
	}
}

func (s *Server) PreviewImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, data, ok := readUpload(w, r)
		if !ok {
			return
		}
		headers, rows, err := readCSV(data)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid CSV file: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, imports.Preview{
			Headers:   headers,
			Rows:      rows[:min(len(rows), previewRows)],
			TotalRows: len(rows),
		})
	}
}

// UploadImportHandler applies the file synchronously. Unit and user imports
// create records; other types are only counted.
func (s *Server) UploadImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, ok := readUpload(w, r)
		if !ok {
			return
		}
		typ := imports.Type(r.FormValue("type"))
		switch typ {
		case imports.TypeUnits, imports.TypeUsers, imports.TypePayments, imports.TypeMeters:
		case "":
			writeValidation(w, missingField("body", "type"))
			return
		default:
			writeValidation(w, validationIssue{Loc: []string{"body", "type"}, Msg: "Input should be 'units', 'users', 'payments' or 'meters'", Type: "enum"})
			return
		}

		me := currentUser(r)
		job := imports.Job{
			ID:           uuid.New().String(),
			TenantID:     me.TenantID,
			UserID:       me.ID,
			UploaderName: me.FullName,
			Type:         typ,
			Filename:     filename,
			Status:       imports.StatusProcessing,
			CreatedAt:    nowString(),
		}

		headers, rows, err := readCSV(data)
		if err != nil {
			job.Status = imports.StatusFailed
			job.ErrorMessage = "Invalid CSV file: " + err.Error()
		} else {
			s.applyImport(&job, me, headers, rows)
		}
		job.CompletedAt = nowString()
		s.imports.put(job.ID, job)
		s.log.Debug().Str("import_id", job.ID).Str("type", string(typ)).Int("rows", job.TotalRows).Int("failed", job.FailedRows).Msg("import applied")
		writeJSON(w, http.StatusCreated, job)
	}
}

func (s *Server) applyImport(job *imports.Job, me *users.User, headers []string, rows [][]string) {
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[h] = i
	}
	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	job.TotalRows = len(rows)
	for i, row := range rows {
		line := i + 2 // header is line 1
		var rowErr *imports.RowError
		switch job.Type {
		case imports.TypeUnits:
			rowErr = s.importUnit(me.TenantID, line, field, row)
		case imports.TypeUsers:
			rowErr = s.importUser(me.TenantID, line, field, row)
		}
		job.ProcessedRows++
		if rowErr != nil {
			job.FailedRows++
			job.Errors = append(job.Errors, *rowErr)
			continue
		}
		job.SuccessfulRows++
	}

	job.Status = imports.StatusCompleted
	if job.TotalRows > 0 && job.SuccessfulRows == 0 {
		job.Status = imports.StatusFailed
		job.ErrorMessage = "No rows imported"
	}
}

func (s *Server) importUnit(tenant string, line int, field func([]string, string) string, row []string) *imports.RowError {
	number := field(row, "number")
	area, err := strconv.ParseFloat(field(row, "area"), 64)
	if err != nil {
		return &imports.RowError{Row: line, Field: "area", Message: "area must be a number"}
	}
	typ := units.UnitType(field(row, "type"))
	if typ == "" {
		typ = units.TypeApartment
	}
	if issues := validateUnit(number, typ, area); len(issues) > 0 {
		return &imports.RowError{Row: line, Field: issues[0].Loc[1], Message: issues[0].Msg}
	}
	if s.unitNumberTaken(tenant, number, "") {
		return &imports.RowError{Row: line, Field: "number", Message: "Unit number already exists"}
	}

	now := nowString()
	u := units.Unit{
		ID:        uuid.New().String(),
		TenantID:  tenant,
		Number:    number,
		Type:      typ,
		Area:      area,
		Floor:     field(row, "floor"),
		Block:     field(row, "block"),
		Status:    units.StatusVacant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.units.put(u.ID, u)
	return nil
}

// importUser creates accounts without a usable password; an administrator
// resets it afterwards.
func (s *Server) importUser(tenant string, line int, field func([]string, string) string, row []string) *imports.RowError {
	email := field(row, "email")
	if email == "" || !strings.Contains(email, "@") {
		return &imports.RowError{Row: line, Field: "email", Message: "valid email is required"}
	}
	if existing := s.users.List("", func(u users.User) bool { return strings.EqualFold(u.Email, email) }); len(existing) > 0 {
		return &imports.RowError{Row: line, Field: "email", Message: "Email already registered"}
	}
	role := users.RoleType(field(row, "role"))
	switch role {
	case "":
		role = users.RoleResident
	case users.RoleAdmin, users.RoleResident, users.RoleEmployee, users.RoleStaff:
	default:
		return &imports.RowError{Row: line, Field: "role", Message: "unknown role " + string(role)}
	}

	now := nowString()
	_, err := s.users.Upsert(users.User{
		Email:     email,
		FullName:  field(row, "full_name"),
		Role:      role,
		TenantID:  tenant,
		IsActive:  true,
		CPF:       field(row, "cpf"),
		Phone:     field(row, "phone"),
		CreatedAt: now,
		UpdatedAt: now,
	}, "")
	if err != nil {
		return &imports.RowError{Row: line, Message: err.Error()}
	}
	return nil
}

// chatRequest accepts both the conversation and the document Q&A shapes.
type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	Question       string `json:"question"`
	MaxChunks      int    `json:"max_chunks"`
}

func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in chatRequest
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.Question) != "" {
			writeJSON(w, http.StatusOK, s.answer(r, in.Question, in.MaxChunks))
			return
		}
		if strings.TrimSpace(in.Content) == "" {
			writeValidation(w, missingField("body", "content"))
			return
		}

		me := currentUser(r)
		conv, ok := s.ownConversation(r, in.ConversationID)
		if in.ConversationID != "" && !ok {
			notFound(w, "Conversation")
			return
		}
		if !ok {
			conv = s.newConversation(me, titleFrom(in.Content))
		}

		userMsg := s.appendMessage(conv.ID, ai.RoleUser, in.Content)
		reply := s.answer(r, in.Content, 0)
		assistantMsg := s.appendMessage(conv.ID, ai.RoleAssistant, reply.Answer)
		s.conversations.update(conv.ID, func(c *ai.Conversation) {
			c.MessageCount += 2
			c.LastMessageAt = assistantMsg.CreatedAt
			c.UpdatedAt = assistantMsg.CreatedAt
		})

		writeJSON(w, http.StatusOK, ai.SendMessageResponse{
			Message:          userMsg,
			AssistantMessage: assistantMsg,
			ConversationID:   conv.ID,
		})
	}
}

// answer cites the visible documents whose name, description or tags share a
// word with the question.
func (s *Server) answer(r *http.Request, question string, maxChunks int) ai.Answer {
	if maxChunks <= 0 {
		maxChunks = 5
	}
	var words []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		if word = strings.Trim(word, "?.,!;:"); len(word) > 3 {
			words = append(words, word)
		}
	}
	docs := s.visibleDocuments(r, func(d documents.Document) bool {
		text := strings.ToLower(d.Name + " " + d.Description + " " + strings.Join(d.Tags, " "))
		for _, word := range words {
			if strings.Contains(text, word) {
				return true
			}
		}
		return false
	})
	docs = docs[:min(len(docs), maxChunks)]

	if len(docs) == 0 {
		return ai.Answer{
			Answer:  "I could not find anything about that in the condominium documents.",
			Sources: []ai.Source{},
		}
	}
	names := make([]string, len(docs))
	sources := make([]ai.Source, len(docs))
	for i, d := range docs {
		names[i] = d.Name
		sources[i] = ai.Source{Filename: d.Name, ChunkIndex: i}
	}
	return ai.Answer{
		Answer:     "The following documents cover your question: " + strings.Join(names, ", ") + ".",
		Sources:    sources,
		Confidence: 0.5,
	}
}

func titleFrom(content string) string {
	content = strings.TrimSpace(content)
	if r := []rune(content); len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return content
}

func (s *Server) newConversation(me *users.User, title string) ai.Conversation {
	if title == "" {
		title = "New conversation"
	}
	now := nowString()
	c := ai.Conversation{
		ID:            uuid.New().String(),
		TenantID:      me.TenantID,
		UserID:        me.ID,
		Title:         title,
		Status:        "active",
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.conversations.put(c.ID, c)
	s.messages.put(c.ID, nil)
	return c
}

func (s *Server) appendMessage(conversationID string, role ai.Role, content string) ai.Message {
	m := ai.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      nowString(),
	}
	s.messages.update(conversationID, func(list *[]ai.Message) {
		*list = append(*list, m)
	})
	return m
}

func (s *Server) ownConversation(r *http.Request, id string) (ai.Conversation, bool) {
	if id == "" {
		return ai.Conversation{}, false
	}
	c, ok := s.conversations.get(id)
	if !ok || c.UserID != currentUser(r).ID {
		return ai.Conversation{}, false
	}
	return c, true
}

func (s *Server) ListConversationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := currentUser(r)
		list := s.conversations.list(func(c ai.Conversation) bool {
			return c.UserID == me.ID && c.Status != "archived"
		})
		sort.SliceStable(list, func(i, j int) bool { return list[i].LastMessageAt > list[j].LastMessageAt })
		writeList(w, r, list)
	}
}

func (s *Server) CreateConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Title string `json:"title"`
		}
		if r.ContentLength != 0 && !decodeJSON(w, r, &in) {
			return
		}
		writeJSON(w, http.StatusCreated, s.newConversation(currentUser(r), in.Title))
	}
}

func (s *Server) GetConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.ownConversation(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Conversation")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) ConversationMessagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.ownConversation(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Conversation")
			return
		}
		msgs, _ := s.messages.get(c.ID)
		if msgs == nil {
			msgs = []ai.Message{}
		}
		writeList(w, r, msgs)
	}
}

func (s *Server) ArchiveConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := s.ownConversation(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Conversation")
			return
		}
		c, _ := s.conversations.update(current.ID, func(c *ai.Conversation) {
			c.Status = "archived"
			c.UpdatedAt = nowString()
		})
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) DeleteConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.ownConversation(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Conversation")
			return
		}
		s.conversations.remove(c.ID)
		s.messages.remove(c.ID)
		writeNoContent(w)
	}
}

func (s *Server) UsageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := currentUser(r)
		convs := s.conversations.list(func(c ai.Conversation) bool { return c.UserID == me.ID })
		total := 0
		for _, c := range convs {
			total += c.MessageCount
		}
		writeJSON(w, http.StatusOK, map[string]int{
			"conversations": len(convs),
			"messages":      total,
		})
	}
}
