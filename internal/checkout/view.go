package checkout

// View is the JSON shape of a wizard state. Drafts fill the optional fields
// when the customer stepped back, so forms can be prefilled.
type View struct {
	CurrentStep    Step                   `json:"currentStep"`
	CheckoutConfig Config                 `json:"checkoutConfig"`
	CustomerInfo   *CustomerInfo          `json:"customerInfo,omitempty"`
	Protection     *ProtectionSelection   `json:"protection,omitempty"`
	Documents      *VerificationDocuments `json:"documents,omitempty"`
	TotalPrice     float64                `json:"totalPrice"`
}

func ViewOf(s State) View {
	v := View{CurrentStep: s.Step(), CheckoutConfig: s.Config(), TotalPrice: s.Config().Price}

	var d drafts
	switch st := s.(type) {
	case CustomerInfoState:
		d = st.drafts
	case ProtectionState:
		d = st.drafts
		v.CustomerInfo = &st.Customer
	case DocumentsState:
		d = st.drafts
		v.CustomerInfo = &st.Customer
		v.Protection = &st.Protection
	case ReviewState:
		d = st.drafts
		v.CustomerInfo = &st.Customer
		v.Protection = &st.Protection
		v.Documents = &st.Documents
	}

	if v.CustomerInfo == nil {
		v.CustomerInfo = d.customer
	}
	if v.Protection == nil {
		v.Protection = d.protection
	}
	if v.Documents == nil {
		v.Documents = d.documents
	}
	if v.Protection != nil {
		v.TotalPrice = v.Protection.TotalPrice(v.CheckoutConfig.Price)
	}
	return v
}
