package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

// RecentQuoteLimit is how many quotes the client-context layer includes.
const RecentQuoteLimit = 5

// PromptComposer assembles the layered system prompt: core, then industry,
// then client context, then the user's message. A missing layer is
// omitted; composition itself never fails on a lookup.
type PromptComposer struct {
	prompts    ports.PromptLayerReader
	companies  ports.CompanyRepository
	industries ports.IndustryRepository
	clients    ports.ClientRepository
	quotes     ports.QuoteRepository
	log        zerolog.Logger
}

func NewPromptComposer(
	prompts ports.PromptLayerReader,
	companies ports.CompanyRepository,
	industries ports.IndustryRepository,
	clients ports.ClientRepository,
	quotes ports.QuoteRepository,
	log zerolog.Logger,
) *PromptComposer {
	return &PromptComposer{
		prompts:    prompts,
		companies:  companies,
		industries: industries,
		clients:    clients,
		quotes:     quotes,
		log:        log,
	}
}

func (c *PromptComposer) Compose(ctx context.Context, in ports.ComposeInput) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0, 4)

	if core := c.coreLayer(ctx); core != "" {
		msgs = append(msgs, systemMessage(domain.LayerCore, core))
	}
	if industry := c.industryLayer(ctx, in.CompanyID); industry != "" {
		msgs = append(msgs, systemMessage(domain.LayerIndustry, industry))
	}
	if in.ClientID != "" {
		if client := c.clientLayer(ctx, in.CompanyID, in.ClientID); client != "" {
			msgs = append(msgs, systemMessage(domain.LayerClient, client))
		}
	}

	msgs = append(msgs, domain.Message{
		Role:    domain.MessageRoleUser,
		Layer:   domain.LayerUser,
		Content: in.UserMessage,
	})
	return msgs, nil
}

func (c *PromptComposer) coreLayer(ctx context.Context) string {
	p, err := c.prompts.ActiveCore(ctx)
	if err != nil {
		ev := c.log.Warn()
		if !errors.Is(err, domain.ErrPromptNotFound) {
			ev = ev.Err(err)
		}
		ev.Msg("no active core prompt, composing without core layer")
		return ""
	}
	return strings.TrimSpace(p.Content)
}

func (c *PromptComposer) industryLayer(ctx context.Context, companyID string) string {
	if companyID == "" {
		return ""
	}
	company, err := c.companies.FindByID(ctx, companyID)
	if err != nil {
		c.log.Debug().Err(err).Str("company_id", companyID).Msg("industry layer skipped: company lookup failed")
		return ""
	}
	if company.IndustryID == "" {
		return ""
	}
	industry, err := c.industries.FindByID(ctx, company.IndustryID)
	if err != nil || !industry.IsActive {
		c.log.Debug().Err(err).Str("industry_id", company.IndustryID).Msg("industry layer skipped: industry unavailable")
		return ""
	}
	p, err := c.prompts.ActiveForIndustry(ctx, industry.ID)
	if err != nil {
		c.log.Debug().Err(err).Str("industry_id", industry.ID).Msg("industry layer skipped: no active prompt")
		return ""
	}
	return strings.TrimSpace(p.Content)
}

func (c *PromptComposer) clientLayer(ctx context.Context, companyID, clientID string) string {
	client, err := c.clients.FindByID(ctx, companyID, clientID)
	if err != nil {
		c.log.Debug().Err(err).Str("client_id", clientID).Msg("client layer skipped: client lookup failed")
		return ""
	}
	quotes, err := c.quotes.RecentForClient(ctx, companyID, clientID, RecentQuoteLimit)
	if err != nil {
		c.log.Debug().Err(err).Str("client_id", clientID).Msg("recent quotes unavailable")
		quotes = nil
	}
	return ClientContext(client, quotes)
}

// ClientContext renders the client profile and its recent quotes as a
// free-text prompt block. quotes are expected newest first; at most
// RecentQuoteLimit are rendered.
func ClientContext(client *domain.Client, quotes []*domain.Quote) string {
	var b strings.Builder
	b.WriteString("Client context:\n")
	fmt.Fprintf(&b, "Name: %s\n", client.Name)
	if client.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", client.Email)
	}
	if client.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", client.Phone)
	}
	if client.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", client.Address)
	}
	if client.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", client.Notes)
	}

	if len(quotes) > RecentQuoteLimit {
		quotes = quotes[:RecentQuoteLimit]
	}
	if len(quotes) > 0 {
		b.WriteString("\nRecent quotes (newest first):\n")
		for _, q := range quotes {
			fmt.Fprintf(&b, "- %s (%s) %.2f [%s]: %s\n",
				q.QuoteNumber, q.Date.Format("2006-01-02"), q.Amount, q.Status, q.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func systemMessage(layer domain.PromptLayer, content string) domain.Message {
	return domain.Message{Role: domain.MessageRoleSystem, Layer: layer, Content: content}
}
