package knowledge

import _ "embed"

//go:embed data/nodes.json
var nodesJSON []byte

//go:embed data/patterns.json
var patternsJSON []byte

//go:embed data/payloads.json
var payloadsJSON []byte

//go:embed data/quirks.json
var quirksJSON []byte

//go:embed data/expressions.json
var expressionsJSON []byte
