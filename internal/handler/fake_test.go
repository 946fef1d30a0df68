package handler

import (
	"context"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/dao/model"
)

// fakeStore is the in-memory Store used by the handler tests. It
// mirrors the persistence contract: sentinel errors, idempotent
// membership writes and cascading deletes.
type fakeStore struct {
	nextID   uint
	users    map[uint]*model.User
	projects map[uint]*model.Project
	issues   map[uint]*model.Issue
	comments map[uint]*model.Comment
	members  map[uint]map[uint]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uint]*model.User{},
		projects: map[uint]*model.Project{},
		issues:   map[uint]*model.Issue{},
		comments: map[uint]*model.Comment{},
		members:  map[uint]map[uint]bool{},
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

//////////////////////////////////////////
// Users
//////////////////////////////////////////

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return dao.ErrConflict
		}
	}
	user.ID = f.id()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, dao.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(f.users))
	for id := uint(1); id <= f.nextID; id++ {
		if user, ok := f.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id uint, patch map[string]any) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	for key, value := range patch {
		switch key {
		case "age":
			user.Age = value.(int)
		case "password":
			user.Password = value.(string)
		case "email":
			email := value.(string)
			user.Email = &email
		case "can_be_contacted":
			user.CanBeContacted = value.(bool)
		case "can_data_be_shared":
			user.CanDataBeShared = value.(bool)
		}
	}
	return user, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return dao.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

//////////////////////////////////////////
// Projects and membership
//////////////////////////////////////////

func (f *fakeStore) CreateProject(_ context.Context, project *model.Project, contributorIDs []uint) error {
	project.ID = f.id()
	f.projects[project.ID] = project
	for _, uid := range contributorIDs {
		f.addMember(project.ID, uid)
	}
	return nil
}

func (f *fakeStore) GetProject(_ context.Context, id uint) (*model.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return project, nil
}

func (f *fakeStore) ListProjects(_ context.Context) ([]model.Project, error) {
	projects := make([]model.Project, 0, len(f.projects))
	for id := uint(1); id <= f.nextID; id++ {
		if project, ok := f.projects[id]; ok {
			projects = append(projects, *project)
		}
	}
	return projects, nil
}

func (f *fakeStore) ListProjectsForUser(_ context.Context, userID uint) ([]model.Project, error) {
	var projects []model.Project
	for id := uint(1); id <= f.nextID; id++ {
		project, ok := f.projects[id]
		if !ok {
			continue
		}
		if project.AuthorID == userID || f.members[id][userID] {
			projects = append(projects, *project)
		}
	}
	return projects, nil
}

func (f *fakeStore) UpdateProject(_ context.Context, id uint, patch map[string]any) (*model.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	for key, value := range patch {
		switch key {
		case "name":
			project.Name = value.(string)
		case "description":
			project.Description = value.(string)
		case "type":
			project.Type = value.(model.ProjectType)
		}
	}
	return project, nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id uint) error {
	if _, ok := f.projects[id]; !ok {
		return dao.ErrNotFound
	}
	delete(f.projects, id)
	delete(f.members, id)
	for iid, issue := range f.issues {
		if issue.ProjectID == id {
			delete(f.issues, iid)
		}
	}
	for cid, comment := range f.comments {
		if comment.ProjectID == id {
			delete(f.comments, cid)
		}
	}
	return nil
}

func (f *fakeStore) addMember(projectID, userID uint) {
	if f.members[projectID] == nil {
		f.members[projectID] = map[uint]bool{}
	}
	f.members[projectID][userID] = true
}

func (f *fakeStore) AddContributor(_ context.Context, projectID, userID uint) error {
	f.addMember(projectID, userID)
	return nil
}

func (f *fakeStore) RemoveContributor(_ context.Context, projectID, userID uint) error {
	delete(f.members[projectID], userID)
	return nil
}

func (f *fakeStore) IsContributor(_ context.Context, userID, projectID uint) (bool, error) {
	return f.members[projectID][userID], nil
}

func (f *fakeStore) ListContributorIDs(_ context.Context, projectID uint) ([]uint, error) {
	ids := make([]uint, 0, len(f.members[projectID]))
	for id := uint(1); id <= f.nextID; id++ {
		if f.members[projectID][id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

//////////////////////////////////////////
// Issues
//////////////////////////////////////////

func (f *fakeStore) CreateIssue(_ context.Context, issue *model.Issue) error {
	issue.ID = f.id()
	f.issues[issue.ID] = issue
	return nil
}

func (f *fakeStore) GetIssue(_ context.Context, id uint) (*model.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return issue, nil
}

func (f *fakeStore) ListIssuesByProject(_ context.Context, projectID uint) ([]model.Issue, error) {
	var issues []model.Issue
	for id := uint(1); id <= f.nextID; id++ {
		if issue, ok := f.issues[id]; ok && issue.ProjectID == projectID {
			issues = append(issues, *issue)
		}
	}
	return issues, nil
}

func (f *fakeStore) UpdateIssue(_ context.Context, id uint, patch map[string]any) (*model.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	for key, value := range patch {
		switch key {
		case "name":
			issue.Name = value.(string)
		case "description":
			issue.Description = value.(string)
		case "priority":
			issue.Priority = value.(model.IssuePriority)
		case "tag":
			issue.Tag = value.(model.IssueTag)
		case "status":
			issue.Status = value.(model.IssueStatus)
		case "contributor_id":
			cid := value.(uint)
			issue.ContributorID = &cid
		}
	}
	return issue, nil
}

func (f *fakeStore) AssignIssue(ctx context.Context, id, contributorID uint) (*model.Issue, error) {
	return f.UpdateIssue(ctx, id, map[string]any{"contributor_id": contributorID})
}

func (f *fakeStore) DeleteIssue(_ context.Context, id uint) error {
	if _, ok := f.issues[id]; !ok {
		return dao.ErrNotFound
	}
	delete(f.issues, id)
	for cid, comment := range f.comments {
		if comment.IssueID == id {
			delete(f.comments, cid)
		}
	}
	return nil
}

func (f *fakeStore) ListAssignedIssues(_ context.Context, userID, projectID uint) ([]model.Issue, error) {
	issues := []model.Issue{}
	for id := uint(1); id <= f.nextID; id++ {
		issue, ok := f.issues[id]
		if !ok || issue.ProjectID != projectID {
			continue
		}
		if issue.ContributorID != nil && *issue.ContributorID == userID {
			issues = append(issues, *issue)
		}
	}
	return issues, nil
}

func (f *fakeStore) CountIssuesByStatus(_ context.Context) (map[model.IssueStatus]int64, error) {
	counts := map[model.IssueStatus]int64{}
	for _, issue := range f.issues {
		counts[issue.Status]++
	}
	return counts, nil
}

//////////////////////////////////////////
// Comments
//////////////////////////////////////////

func (f *fakeStore) CreateComment(_ context.Context, comment *model.Comment) error {
	comment.ID = f.id()
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeStore) GetComment(_ context.Context, id uint) (*model.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return comment, nil
}

func (f *fakeStore) ListCommentsByIssue(_ context.Context, issueID uint) ([]model.Comment, error) {
	var comments []model.Comment
	for id := uint(1); id <= f.nextID; id++ {
		if comment, ok := f.comments[id]; ok && comment.IssueID == issueID {
			comments = append(comments, *comment)
		}
	}
	return comments, nil
}

func (f *fakeStore) UpdateComment(_ context.Context, id uint, patch map[string]any) (*model.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	if description, ok := patch["description"]; ok {
		comment.Description = description.(string)
	}
	return comment, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id uint) error {
	if _, ok := f.comments[id]; !ok {
		return dao.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

//////////////////////////////////////////
// Fixture helpers
//////////////////////////////////////////

func (f *fakeStore) seedUser(username string) *model.User {
	user := &model.User{Username: username, Age: 30}
	user.ID = f.id()
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) seedProject(authorID uint, contributorIDs ...uint) *model.Project {
	project := &model.Project{AuthorID: authorID, Name: "tracker", Type: model.ProjectBackEnd}
	project.ID = f.id()
	f.projects[project.ID] = project
	for _, uid := range contributorIDs {
		f.addMember(project.ID, uid)
	}
	return project
}

func (f *fakeStore) seedIssue(projectID, authorID uint) *model.Issue {
	issue := &model.Issue{
		ProjectID: projectID,
		AuthorID:  authorID,
		Name:      "crash on start",
		Status:    model.StatusToDo,
		Priority:  model.PriorityHigh,
		Tag:       model.TagBug,
	}
	issue.ID = f.id()
	f.issues[issue.ID] = issue
	return issue
}

func (f *fakeStore) seedComment(issue *model.Issue, authorID uint) *model.Comment {
	comment := &model.Comment{
		IssueID:     issue.ID,
		ProjectID:   issue.ProjectID,
		AuthorID:    authorID,
		Description: "same here",
	}
	comment.ID = f.id()
	f.comments[comment.ID] = comment
	return comment
}
