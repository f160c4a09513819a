package node

import (
	"fmt"

	"github.com/lioia/topic-hits/pkg/hits"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Queue messages are protobuf encoded google.protobuf.Struct values
const ContentType = "application/x-protobuf"

func EncodeJob(job Job) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":    job.ID,
		"query": job.Query,
		"root":  stringsToList(job.Root),
		"base":  stringsToList(job.Base),
		"top_k": job.TopK,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func DecodeJob(data []byte) (Job, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return Job{}, err
	}
	fields := s.GetFields()
	job := Job{
		ID:    fields["id"].GetStringValue(),
		Query: fields["query"].GetStringValue(),
		TopK:  int(fields["top_k"].GetNumberValue()),
	}
	var err error
	if job.Root, err = listToStrings(fields["root"]); err != nil {
		return Job{}, fmt.Errorf("root: %w", err)
	}
	if job.Base, err = listToStrings(fields["base"]); err != nil {
		return Job{}, fmt.Errorf("base: %w", err)
	}
	return job, nil
}

func EncodeResult(result *JobResult) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":         result.ID,
		"state":      result.State,
		"iterations": result.Iterations,
		"authority":  entriesToList(result.Authority),
		"hub":        entriesToList(result.Hub),
		"error":      result.Error,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func DecodeResult(data []byte) (*JobResult, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	fields := s.GetFields()
	result := &JobResult{
		ID:         fields["id"].GetStringValue(),
		State:      fields["state"].GetStringValue(),
		Iterations: int(fields["iterations"].GetNumberValue()),
		Error:      fields["error"].GetStringValue(),
	}
	var err error
	if result.Authority, err = listToEntries(fields["authority"]); err != nil {
		return nil, fmt.Errorf("authority: %w", err)
	}
	if result.Hub, err = listToEntries(fields["hub"]); err != nil {
		return nil, fmt.Errorf("hub: %w", err)
	}
	return result, nil
}

func stringsToList(values []string) []any {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return list
}

func listToStrings(v *structpb.Value) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v.GetKind())
	}
	values := make([]string, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", item.GetKind())
		}
		values = append(values, s.StringValue)
	}
	return values, nil
}

// Entries keep their [id, score, outdegree, indegree] shape
func entriesToList(entries []hits.Entry) []any {
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = []any{e.ID, e.Score, e.OutDegree, e.InDegree}
	}
	return list
}

func listToEntries(v *structpb.Value) ([]hits.Entry, error) {
	if v == nil {
		return nil, nil
	}
	items := v.GetListValue().GetValues()
	entries := make([]hits.Entry, 0, len(items))
	for _, item := range items {
		fields := item.GetListValue().GetValues()
		if len(fields) != 4 {
			return nil, fmt.Errorf("ranked entry has %d fields, want 4", len(fields))
		}
		entries = append(entries, hits.Entry{
			ID:        fields[0].GetStringValue(),
			Score:     fields[1].GetNumberValue(),
			OutDegree: int(fields[2].GetNumberValue()),
			InDegree:  int(fields[3].GetNumberValue()),
		})
	}
	return entries, nil
}
