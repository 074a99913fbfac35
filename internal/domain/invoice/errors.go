package invoice

import "errors"

// ErrInvoiceNumberTaken marks a unique violation on invoice_number. It is
// raised alongside ErrAlreadyExists so callers can retry with a fresh number.
var ErrInvoiceNumberTaken = errors.New("invoice number already taken")
