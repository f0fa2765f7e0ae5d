package pixst

import "testing"

func TestMetadataSet(t *testing.T) {
	m := NewMetadata()
	m.Set("stain", "dapi")
	if !m.Is("stain", "dapi") {
		t.Fatalf("pair should be set")
	}
	m.Set(MetaKeyOwner, "someone")
	if m.Has(MetaKeyOwner) {
		t.Fatalf("system keys cannot be set")
	}
	m.Set("channel", "")
	if m.Has("channel") {
		t.Fatalf("empty values cannot be set")
	}
}

func TestMetadataDel(t *testing.T) {
	m := NewMetadata()
	m.Set("stain", "dapi")
	m.Del("stain")
	if m.Has("stain") {
		t.Fatalf("pair should be gone")
	}
}

func TestMetadataMerge(t *testing.T) {
	m := NewMetadata()
	m.Merge(map[MetaKey]string{
		"stain":          "dapi",
		"channel":        "1",
		MetaKeyCreatedAt: "0",
	})
	if !m.Is("stain", "dapi") || !m.Is("channel", "1") {
		t.Fatalf("pairs should be merged")
	}
	if m.Has(MetaKeyCreatedAt) {
		t.Fatalf("system keys cannot be merged in")
	}
}

func TestMetadataMatchesOr(t *testing.T) {
	p := tEnv.principal()
	objs := []*Object{tEnv.dataset(p), tEnv.dataset(p), tEnv.dataset(p)}
	objs[0].SetMeta("stain", "dapi")
	objs[1].SetMeta("stain", "gfp")
	if err := tEnv.s.BatchCreate(objs); err != nil {
		t.Error(err)
		return
	}
	meta := NewMetadata()
	meta.Merge(map[MetaKey]string{"stain": "dapi", "channel": "1"})
	got, err := tEnv.s.RunQuery(NewQuery(p.Name).WithMeta(meta).WithAction(Or))
	if err != nil {
		t.Error(err)
		return
	}
	if len(got) != 1 {
		t.Fatalf("only the dapi dataset matches any pair. Got: %d", len(got))
	}
}
