package graph

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/naivary/pixst"
)

// Request describes one duplication run.
type Request struct {
	// Targets are the top nodes of the graphs to duplicate.
	Targets []pixst.Ref
	// Policy decides per class what happens to visited objects.
	// Nil means duplicate everything reachable.
	Policy *Policy
	// Caller becomes the owner of every created object.
	Caller pixst.Principal
	// DryRun computes the outcome without writing anything.
	DryRun bool
}

// Result reports the outcome of a run.
type Result struct {
	// Duplicates maps a class to the sorted ids of the created
	// objects, or to the original ids on a dry run.
	Duplicates map[pixst.Class][]uint64
	// Mapping maps every duplicated original to its duplicate.
	// Empty on a dry run.
	Mapping map[pixst.Ref]pixst.Ref
	// References are the originals that duplicated parents now
	// link to.
	References []pixst.Ref
	DryRun     bool
}

// Duplicator walks object graphs and duplicates them without
// copying binary payloads.
type Duplicator struct {
	store  *pixst.Store
	logger *slog.Logger
}

func NewDuplicator(store *pixst.Store) *Duplicator {
	return &Duplicator{
		store:  store,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

type planStep struct {
	obj    *pixst.Object
	action Action
}

type plan struct {
	// steps in discovery order; the from side of every link
	// precedes the link, parents precede their direct children.
	steps   []planStep
	actions map[pixst.Ref]Action
}

// Run duplicates the graphs below the request's targets. Each
// original is duplicated at most once per run, no matter how many
// paths reach it.
func (d *Duplicator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Caller.IsZero() {
		return nil, pixst.ErrMustIncludeOwner
	}
	if req.Policy == nil {
		req.Policy = NewPolicy()
	}
	start := time.Now()
	if initialized {
		RunsInFlight.Add(ctx, 1)
		defer RunsInFlight.Add(ctx, -1)
		defer func() {
			RunsDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(attribute.Bool("dry_run", req.DryRun)))
		}()
		ctx2, span := tracer.Start(ctx, "graph.Duplicate")
		defer span.End()
		ctx = ctx2
	}
	p, err := d.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.DryRun {
		return d.dryRunResult(ctx, p), nil
	}
	return d.execute(ctx, req, p)
}

// plan walks the graph breadth-first from the targets and assigns
// every reachable object its action without writing anything.
func (d *Duplicator) plan(ctx context.Context, req Request) (*plan, error) {
	p := &plan{actions: make(map[pixst.Ref]Action)}
	queue := slices.Clone(req.Targets)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref := queue[0]
		queue = queue[1:]
		if _, ok := p.actions[ref]; ok {
			continue
		}
		obj, err := d.store.Get(ref)
		if err != nil {
			return nil, err
		}
		action := req.Policy.ActionFor(obj.Class())
		switch action {
		case ActionIgnore:
		case ActionReference:
			if !obj.CanRead(req.Caller) {
				return nil, fmt.Errorf("%w: cannot reference %s", ErrNotReadable, ref)
			}
			if _, isChild := obj.Class().ParentClass(); isChild {
				// A direct child has exactly one parent. It
				// cannot be linked to from a second one, so
				// referencing degrades to ignoring.
				d.logger.Warn("cannot reference a direct child, ignoring",
					slog.String("ref", ref.String()))
				action = ActionIgnore
			}
		case ActionDuplicate:
			if !obj.CanRead(req.Caller) {
				return nil, fmt.Errorf("%w: cannot duplicate %s", ErrNotReadable, ref)
			}
			if obj.Class().IsLink() {
				queue = append(queue, obj.To())
			} else {
				next, err := d.outgoing(obj.Ref())
				if err != nil {
					return nil, err
				}
				queue = append(queue, next...)
			}
		}
		p.actions[ref] = action
		p.steps = append(p.steps, planStep{obj: obj, action: action})
	}
	return p, nil
}

// outgoing returns the refs reachable from a non-link object: its
// links and its direct children.
func (d *Duplicator) outgoing(ref pixst.Ref) ([]pixst.Ref, error) {
	links, err := d.store.LinksFrom(ref, "")
	if err != nil {
		return nil, err
	}
	children, err := d.store.ChildrenOf(ref)
	if err != nil {
		return nil, err
	}
	refs := make([]pixst.Ref, 0, len(links)+len(children))
	for _, l := range links {
		refs = append(refs, l.Ref())
	}
	for _, c := range children {
		refs = append(refs, c.Ref())
	}
	return refs, nil
}

// execute creates the duplicates of a plan. Plain objects first so
// that the original-to-duplicate mapping is complete when the links
// are rewired.
func (d *Duplicator) execute(ctx context.Context, req Request, p *plan) (*Result, error) {
	res := &Result{
		Duplicates: make(map[pixst.Class][]uint64),
		Mapping:    make(map[pixst.Ref]pixst.Ref),
	}
	for _, step := range p.steps {
		d.count(ctx, step)
		switch step.action {
		case ActionIgnore:
		case ActionReference:
			res.References = append(res.References, step.obj.Ref())
		case ActionDuplicate:
			if step.obj.Class().IsLink() {
				continue
			}
			if err := d.duplicateObject(req, p, res, step.obj); err != nil {
				return nil, err
			}
		}
	}
	for _, step := range p.steps {
		if step.action != ActionDuplicate || !step.obj.Class().IsLink() {
			continue
		}
		if err := d.duplicateLink(req, p, res, step.obj); err != nil {
			return nil, err
		}
	}
	for class := range res.Duplicates {
		slices.Sort(res.Duplicates[class])
	}
	slices.SortFunc(res.References, func(a, b pixst.Ref) bool {
		return a.String() < b.String()
	})
	return res, nil
}

func (d *Duplicator) duplicateObject(req Request, p *plan, res *Result, obj *pixst.Object) error {
	dup := obj.CloneFor(req.Caller)
	if parent := obj.Parent(); !parent.IsZero() {
		// Parents precede children in the plan, so a duplicated
		// parent is already mapped. A directly targeted child
		// keeps its original parent.
		if mapped, ok := res.Mapping[parent]; ok {
			parent = mapped
		}
		if err := dup.SetParent(parent); err != nil {
			return err
		}
	}
	if err := d.store.Create(dup); err != nil {
		return err
	}
	res.Mapping[obj.Ref()] = dup.Ref()
	res.Duplicates[dup.Class()] = append(res.Duplicates[dup.Class()], dup.ID())
	return nil
}

func (d *Duplicator) duplicateLink(req Request, p *plan, res *Result, link *pixst.Object) error {
	from, ok := res.Mapping[link.From()]
	if !ok {
		// A link is only kept when its from side was duplicated
		// in this run, e.g. a directly targeted link is dropped.
		d.logger.Warn("dropping link without duplicated parent",
			slog.String("link", link.Ref().String()))
		return nil
	}
	to := link.To()
	if mapped, ok := res.Mapping[to]; ok {
		to = mapped
	} else if p.actions[to] != ActionReference {
		// target was ignored, the link goes with it
		return nil
	}
	dup, err := pixst.NewLink(link.Class(), from, to, req.Caller)
	if err != nil {
		return err
	}
	if err := dup.SetPerms(link.Perms()); err != nil {
		return err
	}
	if err := d.store.Create(dup); err != nil {
		return err
	}
	res.Mapping[link.Ref()] = dup.Ref()
	res.Duplicates[dup.Class()] = append(res.Duplicates[dup.Class()], dup.ID())
	return nil
}

// dryRunResult reports what would have been duplicated, keyed by the
// original ids since nothing was created.
func (d *Duplicator) dryRunResult(ctx context.Context, p *plan) *Result {
	res := &Result{
		Duplicates: make(map[pixst.Class][]uint64),
		Mapping:    make(map[pixst.Ref]pixst.Ref),
		DryRun:     true,
	}
	for _, step := range p.steps {
		d.count(ctx, step)
		ref := step.obj.Ref()
		switch step.action {
		case ActionDuplicate:
			res.Duplicates[ref.Class] = append(res.Duplicates[ref.Class], ref.ID)
		case ActionReference:
			res.References = append(res.References, ref)
		}
	}
	for class := range res.Duplicates {
		slices.Sort(res.Duplicates[class])
	}
	return res
}

func (d *Duplicator) count(ctx context.Context, step planStep) {
	if !initialized {
		return
	}
	attrs := metric.WithAttributes(attribute.String("class", step.obj.Class().String()))
	switch step.action {
	case ActionDuplicate:
		ObjectsDuplicated.Add(ctx, 1, attrs)
	case ActionReference:
		ObjectsReferenced.Add(ctx, 1, attrs)
	case ActionIgnore:
		ObjectsIgnored.Add(ctx, 1, attrs)
	}
}
