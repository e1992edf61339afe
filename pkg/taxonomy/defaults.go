package taxonomy

// DefaultTable returns the built-in taxonomy table used when no file is configured.
func DefaultTable() *Table {
	return &Table{
		Name:    "voucher-taxonomies",
		Version: "1.0.0",
		Configs: map[string]ConfigSpec{
			"bker_issuer": {
				Description:  "Bank electronic receipt, issuing bank",
				DefaultMajor: 1,
				Versions: []Entry{
					{
						Version:     "1.0.0",
						Status:      "deprecated",
						Namespace:   "http://xbrl.mof.gov.cn/taxonomy/voucher/bker/2021",
						Prefix:      "bker",
						SchemaRef:   "bker_issuer_2021.xsd",
						VoucherType: "bank_receipt",
					},
					{
						Version:     "1.1.0",
						Status:      "active",
						Namespace:   "http://xbrl.mof.gov.cn/taxonomy/voucher/bker/2023",
						Prefix:      "bker",
						SchemaRef:   "bker_issuer_2023.xsd",
						VoucherType: "bank_receipt",
					},
				},
			},
			"bker_receiver": {
				Description:  "Bank electronic receipt, receiving entity",
				DefaultMajor: 1,
				Versions: []Entry{
					{
						Version:     "1.1.0",
						Status:      "active",
						Namespace:   "http://xbrl.mof.gov.cn/taxonomy/voucher/bker/2023",
						Prefix:      "bker",
						SchemaRef:   "bker_receiver_2023.xsd",
						VoucherType: "bank_receipt",
					},
				},
			},
			"bkrs_issuer": {
				Description:  "Bank electronic statement",
				DefaultMajor: 1,
				Versions: []Entry{
					{
						Version:     "1.0.0",
						Status:      "active",
						Namespace:   "http://xbrl.mof.gov.cn/taxonomy/voucher/bkrs/2023",
						Prefix:      "bkrs",
						SchemaRef:   "bkrs_issuer_2023.xsd",
						VoucherType: "bank_statement",
					},
				},
			},
			"evat_issuer": {
				Description:  "VAT electronic invoice",
				DefaultMajor: 1,
				Versions: []Entry{
					{
						Version:     "1.0.0",
						Status:      "active",
						Namespace:   "http://xbrl.mof.gov.cn/taxonomy/voucher/evat/2023",
						Prefix:      "evat",
						SchemaRef:   "evat_issuer_2023.xsd",
						VoucherType: "vat_invoice",
					},
				},
			},
		},
		Aliases: map[string]string{
			"bker": "bker_issuer",
			"bkrs": "bkrs_issuer",
			"evat": "evat_issuer",
		},
	}
}
