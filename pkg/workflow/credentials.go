package workflow

// CompressCredentials reduces a raw node's credential map to slot name ->
// display name, the form exposed on a LiteNode.
func CompressCredentials(raw map[string]RawCredential) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for slot, cred := range raw {
		out[slot] = cred.Name
	}
	return out
}

// credentialIndex resolves a node's original credential entries two ways:
// by node ID first (survives a rename within the same edit), falling back
// to by node name only when no node with that ID was present originally
// (a genuinely new node, or one whose ID this caller doesn't know).
type credentialIndex struct {
	byID   map[string]map[string]RawCredential
	byName map[string]map[string]RawCredential
}

func newCredentialIndex(original *RawWorkflow) *credentialIndex {
	idx := &credentialIndex{
		byID:   map[string]map[string]RawCredential{},
		byName: map[string]map[string]RawCredential{},
	}
	if original == nil {
		return idx
	}
	for _, n := range original.Nodes {
		if len(n.Credentials) == 0 {
			continue
		}
		if n.ID != "" {
			idx.byID[n.ID] = n.Credentials
		}
		idx.byName[n.Name] = n.Credentials
	}
	return idx
}

// lookup resolves the original credential map for a lite node being
// reconstructed, preferring identity (ID) over name.
func (idx *credentialIndex) lookup(nodeID, nodeName string) map[string]RawCredential {
	if nodeID != "" {
		if m, ok := idx.byID[nodeID]; ok {
			return m
		}
	}
	if m, ok := idx.byName[nodeName]; ok {
		return m
	}
	return nil
}

// RestoreCredentials re-attaches engine-side identifiers to a lite node's
// credential-name map using original, preferring lookup by node identity so
// a rename applied in the same edit does not strand the credential. When no
// identifier is known (new node, or unknown credential) the identifier is
// emitted as the empty string, which the engine interprets as "resolve by
// name".
func RestoreCredentials(lite LiteNode, original *RawWorkflow) map[string]RawCredential {
	if len(lite.Credentials) == 0 {
		return nil
	}

	idx := newCredentialIndex(original)
	originalForNode := idx.lookup(lite.ID, lite.Name)

	out := make(map[string]RawCredential, len(lite.Credentials))
	for slot, name := range lite.Credentials {
		id := ""
		if originalForNode != nil {
			if cred, ok := originalForNode[slot]; ok && cred.Name == name {
				id = cred.ID
			}
		}
		out[slot] = RawCredential{ID: id, Name: name}
	}
	return out
}
