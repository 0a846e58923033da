package bankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const fetchTimeout = 15 * time.Second

// Transaction is one externally observed bank transaction, parsed per poll
// and never persisted.
type Transaction struct {
	Reference   string
	Amount      int64
	Description string
	Date        string
	Time        string
	Inbound     bool
}

// Client fetches transaction feeds from per-account API endpoints.
type Client struct {
	HTTPClient *http.Client
}

// NewClient creates a feed client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// The feed returns a sieuthicode-style envelope:
//
//	{
//	  "mid": "14",
//	  "code": "00",
//	  "des": "success",
//	  "transactions": [
//	    {
//	      "tranDate": "02/04/2024",
//	      "Reference": "5243 - 51972",
//	      "CD": "-",
//	      "Amount": "10,000",
//	      "Description": "MBVCB.5655475306...",
//	      "DorCCode": "D",
//	      "SeqNo": "51972",
//	      ...
//	    }
//	  ]
//	}
type rawTransaction struct {
	TranDate        string `json:"tranDate"`
	TransactionDate string `json:"TransactionDate"`
	Reference       string `json:"Reference"`
	CD              string `json:"CD"`
	Amount          string `json:"Amount"`
	Description     string `json:"Description"`
	PCTime          string `json:"PCTime"`
	DorCCode        string `json:"DorCCode"`
	PostingTime     string `json:"PostingTime"`
	Remark          string `json:"Remark"`
	SeqNo           string `json:"SeqNo"`
}

type feedEnvelope struct {
	Mid          string           `json:"mid"`
	Code         string           `json:"code"`
	Des          string           `json:"des"`
	Transactions []rawTransaction `json:"transactions"`
}

// FetchTransactions retrieves and normalizes the transaction list from a
// bank account's feed endpoint. Any transport or envelope error is returned
// as-is; the caller treats it as "skip this account until the next cycle".
func (c *Client) FetchTransactions(ctx context.Context, apiURL string) ([]Transaction, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil, errors.New("bank feed url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bank feed request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var envelope feedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("bank feed returned invalid json: %w", err)
	}
	if envelope.Code != "00" {
		return nil, fmt.Errorf("bank feed returned error: code=%s des=%s", envelope.Code, envelope.Des)
	}

	out := make([]Transaction, 0, len(envelope.Transactions))
	for _, raw := range envelope.Transactions {
		out = append(out, normalizeTransaction(raw))
	}
	return out, nil
}

func normalizeTransaction(raw rawTransaction) Transaction {
	// Amounts arrive as strings with thousands separators ("10,000").
	amountStr := strings.ReplaceAll(strings.TrimSpace(raw.Amount), ",", "")
	amount, _ := strconv.ParseInt(amountStr, 10, 64)

	// "+" in CD or "C" in DorCCode marks an inbound credit.
	inbound := raw.CD == "+" || raw.DorCCode == "C"

	return Transaction{
		Reference:   firstNonEmpty(raw.Reference, raw.SeqNo),
		Amount:      amount,
		Description: firstNonEmpty(raw.Description, raw.Remark),
		Date:        firstNonEmpty(raw.TranDate, raw.TransactionDate),
		Time:        firstNonEmpty(raw.PCTime, raw.PostingTime),
		Inbound:     inbound,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
