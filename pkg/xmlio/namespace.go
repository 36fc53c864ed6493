package xmlio

type nsScope struct {
	prefixes   map[string]string
	defaultNS  string
	decls      []NamespaceDecl
	defaultSet bool
}

func (s *nsScope) declare(prefix, uri string) {
	if prefix == "" {
		s.defaultNS = uri
		s.defaultSet = true
	} else {
		if s.prefixes == nil {
			s.prefixes = make(map[string]string, 2)
		}
		s.prefixes[prefix] = uri
	}
	s.decls = append(s.decls, NamespaceDecl{Prefix: prefix, URI: uri})
}

type nsStack struct {
	scopes []nsScope
}

func (s *nsStack) push(scope nsScope) {
	s.scopes = append(s.scopes, scope)
}

func (s *nsStack) pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes[len(s.scopes)-1] = nsScope{}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *nsStack) top() *nsScope {
	if len(s.scopes) == 0 {
		return nil
	}
	return &s.scopes[len(s.scopes)-1]
}

func (s *nsStack) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	if prefix == "" {
		for i := len(s.scopes) - 1; i >= 0; i-- {
			if s.scopes[i].defaultSet {
				return s.scopes[i].defaultNS, true
			}
		}
		// no default namespace declared; use empty namespace.
		return "", true
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if ns, ok := s.scopes[i].prefixes[prefix]; ok {
			return ns, true
		}
	}
	return "", false
}

// lookupPrefix returns the innermost non-empty prefix bound to uri that is
// not shadowed by a nearer declaration.
func (s *nsStack) lookupPrefix(uri string) (string, bool) {
	if uri == XMLNamespace {
		return "xml", true
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		for _, d := range s.scopes[i].decls {
			if d.Prefix == "" || d.URI != uri {
				continue
			}
			if bound, ok := s.lookup(d.Prefix); ok && bound == uri {
				return d.Prefix, true
			}
		}
	}
	return "", false
}
