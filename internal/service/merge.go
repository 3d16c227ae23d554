package service

import (
	"github.com/user/filmlog/internal/model"
)

// MergePolicy 同一身份分组内两条记录的合并策略
type MergePolicy interface {
	Name() string
	// Merge existing 是分组内已有记录，incoming 是新到达的记录
	Merge(existing, incoming model.Film) model.Film
}

// PolicyByName 按名称选择合并策略，未知名称使用字段合并
func PolicyByName(name string) MergePolicy {
	if name == "score" {
		return BestScorePolicy{}
	}
	return FieldMergePolicy{}
}

// preferNonEmpty 新值非空时取新值，否则保留旧值
func preferNonEmpty[T comparable](existing, incoming T) T {
	var zero T
	if incoming != zero {
		return incoming
	}
	return existing
}

// preferPermalink 与 preferNonEmpty 相同，但 "#" 视为空
func preferPermalink(existing, incoming string) string {
	if incoming != "" && incoming != model.Sentinel {
		return incoming
	}
	if existing == "" {
		return incoming
	}
	return existing
}

// FieldMergePolicy 逐字段合并：新记录的非空字段覆盖旧值，空字段保留旧值
// 已有的海报、评论、评分不会被清空
type FieldMergePolicy struct{}

// Name 策略名
func (FieldMergePolicy) Name() string { return "field" }

// Merge 逐字段合并
func (FieldMergePolicy) Merge(existing, incoming model.Film) model.Film {
	return model.Film{
		Title:         preferNonEmpty(existing.Title, incoming.Title),
		Year:          preferNonEmpty(existing.Year, incoming.Year),
		Rating:        preferNonEmpty(existing.Rating, incoming.Rating),
		Permalink:     preferPermalink(existing.Permalink, incoming.Permalink),
		WatchedAt:     preferNonEmpty(existing.WatchedAt, incoming.WatchedAt),
		PosterURL:     preferNonEmpty(existing.PosterURL, incoming.PosterURL),
		ReviewSnippet: preferNonEmpty(existing.ReviewSnippet, incoming.ReviewSnippet),
	}
}

// BestScorePolicy 整条择优：海报 3 分、评论 2 分、评分 1 分、有效外链 1 分
// 分数相同保留先到的记录
type BestScorePolicy struct{}

// Name 策略名
func (BestScorePolicy) Name() string { return "score" }

// Merge 取得分更高的一条
func (BestScorePolicy) Merge(existing, incoming model.Film) model.Film {
	if Score(incoming) > Score(existing) {
		return incoming
	}
	return existing
}

// Score 记录完整度得分
func Score(f model.Film) int {
	score := 0
	if f.PosterURL != "" {
		score += 3
	}
	if f.ReviewSnippet != "" {
		score += 2
	}
	if f.Rating != "" {
		score++
	}
	if f.HasPermalink() {
		score++
	}
	return score
}

// Merger 合并归档与订阅源
type Merger struct {
	resolver *Resolver
	policy   MergePolicy
}

// NewMerger 创建合并器，policy 为 nil 时使用字段合并
func NewMerger(resolver *Resolver, policy MergePolicy) *Merger {
	if policy == nil {
		policy = FieldMergePolicy{}
	}
	return &Merger{resolver: resolver, policy: policy}
}

// Policy 当前合并策略
func (m *Merger) Policy() MergePolicy {
	return m.policy
}

// Merge 先写入归档（完整历史作为底层），再写入订阅源
// 结果按分组创建顺序排列，同样的输入总是得到同样的分组与字段
func (m *Merger) Merge(archive, feed []model.Film) []model.Film {
	s := &mergeState{
		merger: m,
		groups: make([]model.Film, 0, len(archive)+len(feed)),
		parent: make([]int, 0, len(archive)+len(feed)),
		index:  make(map[string]int, 2*(len(archive)+len(feed))),
	}

	for _, f := range archive {
		s.upsert(f)
	}
	for _, f := range feed {
		s.upsert(f)
	}

	out := make([]model.Film, 0, len(s.groups))
	for i, f := range s.groups {
		if s.parent[i] == i {
			out = append(out, f)
		}
	}
	return out
}

// mergeState 一次合并的中间状态
// parent 记录被并入的分组，index 把身份键映射到分组
type mergeState struct {
	merger *Merger
	groups []model.Film
	parent []int
	index  map[string]int
}

func (s *mergeState) root(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

func (s *mergeState) upsert(f model.Film) {
	keys := s.merger.resolver.Keys(f)

	pos := -1
	for _, k := range keys {
		if i, ok := s.index[k]; ok {
			pos = s.root(i)
			break
		}
	}

	if pos == -1 {
		s.groups = append(s.groups, f)
		pos = len(s.groups) - 1
		s.parent = append(s.parent, pos)
	} else {
		s.groups[pos] = s.merger.policy.Merge(s.groups[pos], f)
	}

	s.reindex(pos, keys)
}

// reindex 把到达键和合并后记录的全部键登记到分组
// 若某个键已属于另一个分组，两个分组合并，较早创建的分组保留
func (s *mergeState) reindex(pos int, arrived []string) {
	pending := append(append([]string(nil), arrived...), s.merger.resolver.Keys(s.groups[pos])...)

	for len(pending) > 0 {
		k := pending[0]
		pending = pending[1:]

		i, ok := s.index[k]
		if !ok {
			s.index[k] = pos
			continue
		}
		other := s.root(i)
		if other == pos {
			continue
		}

		first, second := other, pos
		if pos < other {
			first, second = pos, other
		}
		s.groups[first] = s.merger.policy.Merge(s.groups[first], s.groups[second])
		s.parent[second] = first
		pos = first
		pending = append(pending, s.merger.resolver.Keys(s.groups[pos])...)
	}
}
