package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/erraggy/oasweave/contract"
	"github.com/erraggy/oasweave/oaserrors"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.yaml.in/yaml/v4"
)

// transactionFile is the wrapped form of a traffic file.
type transactionFile struct {
	Transactions []contract.Transaction `json:"transactions" yaml:"transactions"`
}

// LoadTransactions reads recorded traffic from a JSON or YAML file. The file
// holds either a list of transactions or an object with a "transactions"
// list.
func LoadTransactions(fs billy.Filesystem, name string) ([]contract.Transaction, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", name, err)
	}
	return DecodeTransactions(name, data)
}

// DecodeTransactions decodes traffic content. Files named *.json are JSON;
// anything else is decoded as YAML, which accepts JSON too.
func DecodeTransactions(name string, data []byte) ([]contract.Transaction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &oaserrors.ParseError{Path: name, Message: "traffic file is empty"}
	}
	isJSON := strings.EqualFold(path.Ext(name), ".json")

	if trimmed[0] == '[' || trimmed[0] == '-' {
		var txs []contract.Transaction
		if err := unmarshal(isJSON, trimmed, &txs); err != nil {
			return nil, &oaserrors.ParseError{Path: name, Message: "decoding transactions", Cause: err}
		}
		return txs, nil
	}

	var wrapped transactionFile
	if err := unmarshal(isJSON, trimmed, &wrapped); err != nil {
		return nil, &oaserrors.ParseError{Path: name, Message: "decoding transactions", Cause: err}
	}
	if wrapped.Transactions == nil {
		return nil, &oaserrors.ParseError{Path: name, Message: `expected a list of transactions or a "transactions" key`}
	}
	return wrapped.Transactions, nil
}

func unmarshal(isJSON bool, data []byte, v any) error {
	if isJSON {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}
