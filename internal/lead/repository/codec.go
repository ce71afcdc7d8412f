package repository

import (
	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/pkg/docstore"
)

// FromDocuments decodes a snapshot of the leads collection.
func FromDocuments(docs []docstore.Document) []domain.Lead {
	leads := make([]domain.Lead, 0, len(docs))
	for _, doc := range docs {
		leads = append(leads, FromDocument(doc))
	}
	return leads
}

// FromDocument decodes one lead. Timestamps may be native, {seconds} maps or ISO strings.
func FromDocument(doc docstore.Document) domain.Lead {
	data := doc.Data
	account := docstore.String(data, "account")
	if account == "" {
		account = docstore.String(data, legacyAccountField)
	}

	lead := domain.Lead{
		ID:         doc.ID,
		FullName:   docstore.String(data, "fullName"),
		Cell:       docstore.String(data, "cell"),
		QueryType:  docstore.String(data, "queryType"),
		Account:    account,
		Brand:      docstore.String(data, "brand"),
		Status:     domain.Status(docstore.String(data, "status")),
		FollowUpAt: docstore.Time(data, "followUpAt"),
		Notified:   docstore.Bool(data, "notified"),
		CreatedAt:  docstore.Time(data, "createdAt"),
		UpdatedAt:  docstore.Time(data, "updatedAt"),
		Comments:   []domain.Comment{},
		Activity:   []domain.Activity{},
	}
	if !lead.Status.Valid() {
		lead.Status = domain.StatusStillInTalk
	}

	for _, item := range docstore.Array(data, "comments") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		c := domain.Comment{Text: docstore.String(m, "text")}
		if t := docstore.Time(m, "date"); t != nil {
			c.Date = *t
		}
		lead.Comments = append(lead.Comments, c)
	}

	for _, item := range docstore.Array(data, "activity") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		a := domain.Activity{
			Type: domain.ActivityType(docstore.String(m, "type")),
			Text: docstore.String(m, "text"),
		}
		if t := docstore.Time(m, "date"); t != nil {
			a.Date = *t
		}
		lead.Activity = append(lead.Activity, a)
	}
	return lead
}

func encodeComment(c domain.Comment) map[string]interface{} {
	return map[string]interface{}{"text": c.Text, "date": c.Date}
}

func encodeComments(comments []domain.Comment) []interface{} {
	out := make([]interface{}, 0, len(comments))
	for _, c := range comments {
		out = append(out, encodeComment(c))
	}
	return out
}

func encodeActivityEntry(a domain.Activity) map[string]interface{} {
	return map[string]interface{}{"type": string(a.Type), "text": a.Text, "date": a.Date}
}

func encodeActivity(entries []domain.Activity) []interface{} {
	out := make([]interface{}, 0, len(entries))
	for _, a := range entries {
		out = append(out, encodeActivityEntry(a))
	}
	return out
}
