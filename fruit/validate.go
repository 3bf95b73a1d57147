package fruit

import (
	"strings"

	"github.com/muir/fruitstand/nfilter"
)

// InvalidIDMessage is the message for ids that fail ValidateID.
const InvalidIDMessage = "Invalid format. Id must start with 'f'"

// ValidateID rejects ids that are blank or do not start with a
// lowercase f.
func ValidateID(id string) *nfilter.Rejection {
	if strings.TrimSpace(id) == "" || !strings.HasPrefix(id, "f") {
		return nfilter.Reject("id", InvalidIDMessage)
	}
	return nil
}

// ValidID checks the "id" parameter of any endpoint that declares
// one and passes everything else through.
var ValidID = nfilter.ValidateParam("id", ValidateID)

// ValidFirstArg checks argument 0 and assumes it is the id.
var ValidFirstArg = nfilter.Named("validate-first-arg", nfilter.ValidateArg(0, ValidateID))
