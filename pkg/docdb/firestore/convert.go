package firestore

import (
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// toUpdates turns a field map into native updates. Keys are dot-separated
// field paths. Paths are sorted so the request is deterministic.
func toUpdates(fields map[string]any) []firestore.Update {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}
	return updates
}

func toPreconditions(preconds []docdb.Precondition) ([]firestore.Precondition, error) {
	var out []firestore.Precondition
	for _, p := range preconds {
		if p.Exists != nil {
			if !*p.Exists {
				return nil, fmt.Errorf("%w: firestore updates cannot require a missing document", docdb.ErrUnsupported)
			}
			out = append(out, firestore.Exists)
		}
		if !p.LastUpdateTime.IsZero() {
			out = append(out, firestore.LastUpdateTime(p.LastUpdateTime))
		}
	}
	return out, nil
}

func toWriteResult(res *firestore.WriteResult) *docdb.WriteResult {
	if res == nil {
		return &docdb.WriteResult{}
	}
	return &docdb.WriteResult{UpdateTime: res.UpdateTime}
}

func toDocumentSnapshot(ref *firestore.DocumentRef, snap *firestore.DocumentSnapshot) *docdb.DocumentSnapshot {
	if !snap.Exists() {
		out := docdb.NewDocumentSnapshot(ref.Parent.ID, ref.ID, false, nil, nil)
		out.ReadTime = snap.ReadTime
		return out
	}
	out := docdb.NewDocumentSnapshot(ref.Parent.ID, ref.ID, true, snap.Data(), snap.DataTo)
	out.CreateTime = snap.CreateTime
	out.UpdateTime = snap.UpdateTime
	out.ReadTime = snap.ReadTime
	return out
}

func toQuerySnapshot(docs []*firestore.DocumentSnapshot) *docdb.QuerySnapshot {
	out := &docdb.QuerySnapshot{Docs: make([]*docdb.DocumentSnapshot, 0, len(docs))}
	for _, d := range docs {
		out.Docs = append(out.Docs, toDocumentSnapshot(d.Ref, d))
		if d.ReadTime.After(out.ReadTime) {
			out.ReadTime = d.ReadTime
		}
	}
	return out
}
