// Package factory provides a small generic registry used to pick an
// implementation from configuration. An implementation is named by a type
// string and receives a map of raw settings, which it decodes into a typed
// struct with Decode.
//
// Example usage:
//
//	reg := factory.NewRegistry[spill.Store]()
//	reg.Register("jsonl", func(conf map[string]any) (spill.Store, error) {
//	    var c struct{ Dir string `json:"dir"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewJSONLStore(c.Dir)
//	})
//	st, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"dir": os.TempDir()}})
package factory
