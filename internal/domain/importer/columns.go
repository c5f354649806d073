package importer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Field is a logical customer attribute that spreadsheets spell in many ways.
type Field string

const (
	FieldAccountNumber    Field = "account_number"
	FieldPaymentAmount    Field = "payment_amount"
	FieldNewArrears       Field = "new_arrears"
	FieldName             Field = "name"
	FieldContactNumber    Field = "contact_number"
	FieldMobileNumber     Field = "mobile_number"
	FieldEmail            Field = "email"
	FieldRegion           Field = "region"
	FieldRTOM             Field = "rtom"
	FieldProductLabel     Field = "product_label"
	FieldMedium           Field = "medium"
	FieldLatestBillAmount Field = "latest_bill_amount"
	FieldArrears          Field = "arrears"
	FieldAgeMonths        Field = "age_months"
	FieldCreditClass      Field = "credit_class"
	FieldAccountManager   Field = "account_manager"
)

var defaultCandidates = map[Field][]string{
	FieldAccountNumber:    {"ACCOUNT_NUM", "ACCOUNT_NUMBER", "Account Number", "account_number", "accountNumber"},
	FieldPaymentAmount:    {"PAYMENT_AMOUNT", "PAYMENT AMOUNT", "AMOUNT_PAID", "AMOUNT PAID", "PAID_AMOUNT", "PAID AMOUNT", "Payment Amount", "Amount Paid", "Paid Amount"},
	FieldNewArrears:       {"NEW_ARREARS", "NEW_ARREAR_S", "NEW ARREARS", "New Arrears", "new_arrears", "newArrears"},
	FieldName:             {"NAME", "CUSTOMER_NAME", "Name", "Customer Name", "name"},
	FieldContactNumber:    {"CONTACT_NUMBER", "Contact Number", "contactNumber", "contact_number"},
	FieldMobileNumber:     {"MOBILE_CONTACT_TEL", "Mobile Contact", "mobileContactTel", "mobile_number"},
	FieldEmail:            {"EMAIL_ADDRESS", "Email", "emailAddress", "email"},
	FieldRegion:           {"REGION", "Region", "region"},
	FieldRTOM:             {"RTOM", "Rtom", "rtom"},
	FieldProductLabel:     {"PRODUCT_LABEL", "Product Label", "productLabel"},
	FieldMedium:           {"MEDIUM", "Medium", "medium"},
	FieldLatestBillAmount: {"LATEST_BILL_MNY", "Latest Bill Amount", "latestBillAmount"},
	FieldArrears:          {"NEW_ARREARS", "New Arrears", "newArrears", "ARREARS", "Arrears", "arrears"},
	FieldAgeMonths:        {"AGE_MONTHS", "Age Months", "ageMonths"},
	FieldCreditClass:      {"CREDIT_CLASS_NAME", "Credit Class", "creditClassName"},
	FieldAccountManager:   {"ACCOUNT_MANAGER", "Account Manager", "accountManager"},
}

// ColumnSet holds, per field, the header spellings to try in priority order.
type ColumnSet struct {
	candidates map[Field][]string
}

func DefaultColumnSet() *ColumnSet {
	c := &ColumnSet{candidates: make(map[Field][]string, len(defaultCandidates))}
	for f, names := range defaultCandidates {
		c.candidates[f] = append([]string(nil), names...)
	}
	return c
}

type columnsFile struct {
	Columns map[string][]string `yaml:"columns"`
}

// LoadColumnSet starts from the defaults and replaces the list of every field named in the YAML file.
func LoadColumnSet(path string) (*ColumnSet, error) {
	c := DefaultColumnSet()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read columns file: %w", err)
	}

	var file columnsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse columns file %s: %w", path, err)
	}

	for name, spellings := range file.Columns {
		field := Field(strings.TrimSpace(name))
		if _, ok := defaultCandidates[field]; !ok {
			return nil, fmt.Errorf("columns file %s: unknown field %q", path, name)
		}
		cleaned := make([]string, 0, len(spellings))
		for _, s := range spellings {
			if s = strings.TrimSpace(s); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		if len(cleaned) == 0 {
			return nil, fmt.Errorf("columns file %s: field %q has no spellings", path, name)
		}
		c.candidates[field] = cleaned
	}
	return c, nil
}

func (c *ColumnSet) Candidates(field Field) []string {
	return c.candidates[field]
}

// fields resolves logical fields against one row.
type fields struct {
	cols   *ColumnSet
	row    Row
	folded map[string]string
}

func (c *ColumnSet) bind(row Row) *fields {
	return &fields{cols: c, row: row}
}

// get returns the first candidate present with a non-blank value. An exact header match is
// preferred; otherwise headers are compared case-insensitively.
func (f *fields) get(field Field) (any, bool) {
	for _, name := range f.cols.candidates[field] {
		if v, ok := f.row[name]; ok && !isBlank(v) {
			return v, true
		}
		if key, ok := f.foldedKeys()[foldHeader(name)]; ok {
			if v := f.row[key]; !isBlank(v) {
				return v, true
			}
		}
	}
	return nil, false
}

func (f *fields) foldedKeys() map[string]string {
	if f.folded != nil {
		return f.folded
	}
	keys := make([]string, 0, len(f.row))
	for k := range f.row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f.folded = make(map[string]string, len(keys))
	for _, k := range keys {
		folded := foldHeader(k)
		if _, taken := f.folded[folded]; !taken {
			f.folded[folded] = k
		}
	}
	return f.folded
}

func foldHeader(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
