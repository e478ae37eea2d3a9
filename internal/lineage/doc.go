// Package lineage derives the dependencies between the steps of one model.
//
// A step reads from another step when its query mentions the other step's
// destination as an identifier. Matching is case-insensitive and a qualified
// name such as analytics.daily_user_metrics matches on its last segment.
//
// # Basic Usage
//
//	g, err := lineage.Build(model)
//	if err != nil {
//	    return err
//	}
//	for _, s := range g.ReadsFrom(1) {
//	    fmt.Println(s.Name)
//	}
package lineage
