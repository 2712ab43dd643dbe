package services

import "fmt"

// CertificateInput is everything an interim payment certificate depends on.
type CertificateInput struct {
	WorkExecutedCumulative float64
	RetentionPct           float64
	AdvanceRecovery        float64
	VATPct                 float64
	PreviousPayments       float64
	Currency               string
}

// CertificateInputFrom takes the gross value from a valuation's cumulative
// sub-total and the remaining knobs from settings.
func CertificateInputFrom(v Valuation, s Settings) CertificateInput {
	return CertificateInput{
		WorkExecutedCumulative: v.Totals.Cumulative,
		RetentionPct:           s.RetentionPct,
		AdvanceRecovery:        s.AdvanceRecovery,
		VATPct:                 s.VATPct,
		PreviousPayments:       s.PreviousPayments,
		Currency:               s.Currency,
	}
}

// Certificate is the computed payment statement. AmountDue is not clamped
// and goes negative when earlier periods were over-certified.
type Certificate struct {
	Currency               string  `json:"currency"`
	WorkExecutedCumulative float64 `json:"workExecutedCumulative"`
	RetentionPct           float64 `json:"retentionPct"`
	RetentionAmount        float64 `json:"retentionAmount"`
	AdvanceRecovery        float64 `json:"advanceRecovery"`
	NetValuation           float64 `json:"netValuation"`
	VATPct                 float64 `json:"vatPct"`
	VATAmount              float64 `json:"vatAmountCert"`
	TotalCertified         float64 `json:"totalCertified"`
	PreviousPayments       float64 `json:"previousPayments"`
	AmountDue              float64 `json:"amountDue"`
	AmountInWords          string  `json:"amountInWords"`
}

// CalcCertificate runs the certificate chain. VAT here is charged on the
// net valuation after retention and advance recovery.
func CalcCertificate(in CertificateInput) Certificate {
	c := Certificate{
		Currency:               in.Currency,
		WorkExecutedCumulative: in.WorkExecutedCumulative,
		RetentionPct:           in.RetentionPct,
		AdvanceRecovery:        in.AdvanceRecovery,
		VATPct:                 in.VATPct,
		PreviousPayments:       in.PreviousPayments,
	}
	c.RetentionAmount = in.WorkExecutedCumulative * in.RetentionPct / 100
	c.NetValuation = in.WorkExecutedCumulative - c.RetentionAmount - in.AdvanceRecovery
	c.VATAmount = c.NetValuation * in.VATPct / 100
	c.TotalCertified = c.NetValuation + c.VATAmount
	c.AmountDue = c.TotalCertified - in.PreviousPayments
	c.AmountInWords = NumberToWords(c.AmountDue, in.Currency)
	return c
}

// CertificateLine is one line of the certificate statement. Deductions are
// shown with a leading minus.
type CertificateLine struct {
	Label     string  `json:"label"`
	Amount    float64 `json:"amount"`
	Deduction bool    `json:"deduction,omitempty"`
	Emphasis  bool    `json:"emphasis,omitempty"`
}

// Display renders the amount as it appears on the certificate.
func (l CertificateLine) Display() string {
	if l.Deduction {
		return "-" + fixed2(l.Amount)
	}
	return fixed2(l.Amount)
}

// Lines returns the fixed statement sequence below the description header.
func (c Certificate) Lines() []CertificateLine {
	return []CertificateLine{
		{Label: "Gross Value of Work Executed (Cumul. Sub Total)", Amount: c.WorkExecutedCumulative},
		{Label: fmt.Sprintf("Less: Retention (%s%%)", FormatPercent(c.RetentionPct)), Amount: c.RetentionAmount, Deduction: true},
		{Label: "Less: Advance Recovery", Amount: c.AdvanceRecovery, Deduction: true},
		{Label: "Net Value", Amount: c.NetValuation},
		{Label: fmt.Sprintf("Add: VAT (%s%%) on Net Value", FormatPercent(c.VATPct)), Amount: c.VATAmount},
		{Label: "TOTAL CERTIFIED TO DATE", Amount: c.TotalCertified, Emphasis: true},
		{Label: "Less: Previous Payments (Certified to Date)", Amount: c.PreviousPayments, Deduction: true},
		{Label: "NET AMOUNT DUE THIS CERTIFICATE", Amount: c.AmountDue, Emphasis: true},
	}
}

// Statement is the certifying sentence printed under the statement.
func (c Certificate) Statement() string {
	return fmt.Sprintf("Therefore we certify to contractor payable net amount of %s %s (%s)",
		FormatAmount(c.AmountDue), c.Currency, c.AmountInWords)
}
