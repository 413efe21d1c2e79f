package engine

import (
	"context"
	"fmt"
)

func (e *Engine) runStandard(ctx context.Context, q Standard, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}
	v, ok := e.paths[q.Path].Resolve(e.graph, course)
	if !ok {
		return noData(q.Label, EntityCourse, name)
	}
	answer := q.Answer
	if answer == "" {
		answer = "%s"
	}
	return answered(answer, v.String())
}

func (e *Engine) runList(ctx context.Context, q List, params map[string]string, page int) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}

	path := e.paths[q.Path]
	head, rest := path[0], path[1:]
	format, ok := formatters[q.Format]
	if !ok {
		panic(fmt.Sprintf("unknown formatter %q", q.Format))
	}

	vals, _ := e.graph.Relation(course, head)
	items := make([]string, 0, len(vals))
	for _, v := range vals {
		if len(rest) > 0 {
			resolved, ok := rest.Resolve(e.graph, v.Node)
			if !ok {
				continue
			}
			v = resolved
		}
		if s := format(v); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return noData(q.Label, EntityCourse, name)
	}

	p := Paginate(items, page)
	return result{text: p.Text, outcome: OutcomeAnswered, page: &p}
}
