package internal

type NormalizedRow struct {
	ObjectType   string
	ObjectNumber string
	Name         string
	Units        string
	DeviceNumber string
	DeviceName   string
}

type DeviceGroup struct {
	Key    string
	Source string
	Rows   []NormalizedRow
}

type OutputRecord struct {
	ObjectType   string
	ObjectNumber string
	Name         string
	Units        string
	Building     string
	DeviceNumber string
	DeviceName   string
}

func (r OutputRecord) Cells() []string {
	return []string{r.ObjectType, r.ObjectNumber, r.Name, r.Units, r.Building, r.DeviceNumber, r.DeviceName}
}

var OutputHeader = []string{"Object_Type", "Object_Number", "Name", "Units", "Building", "DEV_Number", "DEV_Name"}

// ObjectToken is the result of splitting an object reference token such as
// "AV28". A token that does not look like letters+digits is kept verbatim.
type ObjectToken struct {
	parsed   bool
	typ      string
	number   string
	original string
}

func ParsedToken(typ, number string) ObjectToken {
	return ObjectToken{parsed: true, typ: typ, number: number}
}

func RawToken(original string) ObjectToken {
	return ObjectToken{original: original}
}

func (t ObjectToken) IsParsed() bool { return t.parsed }

func (t ObjectToken) Type() string {
	if t.parsed {
		return t.typ
	}
	return t.original
}

func (t ObjectToken) Number() string {
	if t.parsed {
		return t.number
	}
	return ""
}

type WriteStatus string

const (
	WriteSuccess   WriteStatus = "SUCCESS"
	WriteRetriedAt WriteStatus = "RETRIED_AT"
	WriteFailed    WriteStatus = "FAILED"
)

// WriteOutcome reports where a group ended up on disk. Path is the file that
// was written; for WriteFailed it is empty and Err holds the last failure.
type WriteOutcome struct {
	Status      WriteStatus
	Path        string
	PrimaryPath string
	Err         error
}
