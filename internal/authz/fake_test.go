package authz

import (
	"context"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/dao/model"
)

// fakeDirectory is an in-memory Directory for evaluator tests.
type fakeDirectory struct {
	projects map[uint]*model.Project
	issues   map[uint]*model.Issue
	members  map[uint]map[uint]bool // projectID -> userID -> member
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		projects: map[uint]*model.Project{},
		issues:   map[uint]*model.Issue{},
		members:  map[uint]map[uint]bool{},
	}
}

func (f *fakeDirectory) GetProject(_ context.Context, id uint) (*model.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return project, nil
}

func (f *fakeDirectory) GetIssue(_ context.Context, id uint) (*model.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return issue, nil
}

func (f *fakeDirectory) IsContributor(_ context.Context, userID, projectID uint) (bool, error) {
	return f.members[projectID][userID], nil
}

func (f *fakeDirectory) addProject(id, authorID uint) *model.Project {
	project := &model.Project{AuthorID: authorID, Name: "p", Type: model.ProjectBackEnd}
	project.ID = id
	f.projects[id] = project
	return project
}

func (f *fakeDirectory) addIssue(id, projectID, authorID uint) *model.Issue {
	issue := &model.Issue{ProjectID: projectID, AuthorID: authorID}
	issue.ID = id
	f.issues[id] = issue
	return issue
}

func (f *fakeDirectory) addMember(projectID, userID uint) {
	if f.members[projectID] == nil {
		f.members[projectID] = map[uint]bool{}
	}
	f.members[projectID][userID] = true
}
