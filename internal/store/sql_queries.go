package store

const (
	createUser = `INSERT INTO users (login, auth_hash, name, is_admin)
    VALUES ($1, $2, $3, $4)
    RETURNING user_id, login, auth_hash, name, is_admin, created_at;`

	findUserByLogin = `SELECT user_id, login, auth_hash, name, public_key, is_admin, created_at
    FROM users
    WHERE login = $1;`

	getUserByID = `SELECT user_id, login, auth_hash, name, public_key, is_admin, created_at
    FROM users
    WHERE user_id = $1;`

	setUserPublicKey = `UPDATE users
    SET public_key = $2
    WHERE user_id = $1;`

	getUserPublicKey = `SELECT public_key
    FROM users
    WHERE user_id = $1;`

	createGroup = `INSERT INTO groups (name)
    VALUES ($1)
    RETURNING group_id, name;`

	addGroupMember = `INSERT INTO user_groups (group_id, user_id)
    VALUES ($1, $2)
    ON CONFLICT DO NOTHING;`

	getGroupsOfUser = `SELECT group_id
    FROM user_groups
    WHERE user_id = $1
    ORDER BY group_id;`

	getMembersOfGroup = `SELECT user_id
    FROM user_groups
    WHERE group_id = $1
    ORDER BY user_id;`

	getAllCategories = `SELECT c.category_id, c.name, c.parent_id, c.creator_id, c.responsible_id, c.created_at
		FROM categories c
		ORDER BY c.category_id;`

	getAllCategoryGroups = `SELECT category_id, group_id
		FROM category_groups
		ORDER BY category_id, group_id;`

	insertCategory = `INSERT INTO categories (category_id, name, parent_id, creator_id, responsible_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`

	updateCategoryParent = `UPDATE categories
		SET parent_id = $2
		WHERE category_id = $1;`

	deleteCategories = `DELETE FROM categories
		WHERE category_id = ANY($1);`

	deleteCategoryGroups = `DELETE FROM category_groups
		WHERE category_id = $1;`

	insertCategoryGroup = `INSERT INTO category_groups (category_id, group_id)
		VALUES ($1, $2);`

	setCategoryResponsible = `UPDATE categories
		SET responsible_id = $2
		WHERE category_id = $1;`

	createSecret = `INSERT INTO secrets (name, category_id, creator_id)
		VALUES ($1, $2, $3)
		RETURNING secret_id, name, category_id, creator_id, created_at;`

	getSecretByID = `SELECT secret_id, name, category_id, creator_id, created_at
		FROM secrets
		WHERE secret_id = $1;`

	deleteSecretByID = `DELETE FROM secrets
		WHERE secret_id = $1;`

	getSecretsByCreator = `SELECT secret_id, name, category_id, creator_id, created_at
		FROM secrets
		WHERE creator_id = $1
		ORDER BY secret_id;`

	assignSecretCategory = `UPDATE secrets
		SET category_id = $2
		WHERE secret_id = $1;`

	clearSecretCategories = `UPDATE secrets
		SET category_id = NULL
		WHERE category_id = ANY($1);`

	upsertCiphertext = `INSERT INTO user_encrypted_secrets (secret_id, user_id, ciphertext, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (secret_id, user_id)
		DO UPDATE SET ciphertext = EXCLUDED.ciphertext, updated_at = NOW();`

	ciphertextExists = `SELECT EXISTS (
			SELECT 1 FROM user_encrypted_secrets
			WHERE secret_id = $1 AND user_id = $2
		);`

	getCiphertext = `SELECT id, secret_id, user_id, ciphertext, updated_at
		FROM user_encrypted_secrets
		WHERE secret_id = $1 AND user_id = $2;`

	getHolderIDs = `SELECT user_id
		FROM user_encrypted_secrets
		WHERE secret_id = $1
		ORDER BY user_id;`

	deleteCiphertextsBySecret = `DELETE FROM user_encrypted_secrets
		WHERE secret_id = $1;`

	deleteCiphertextByUserSecret = `DELETE FROM user_encrypted_secrets
		WHERE secret_id = $1 AND user_id = $2;`

	insertJob = `INSERT INTO encrypt_jobs (token, secret_id, user_id, public_key)
		VALUES ($1, $2, $3, $4)
		RETURNING job_id, token, secret_id, user_id, public_key, created_at;`

	getJobByToken = `SELECT job_id, token, secret_id, user_id, public_key, created_at
		FROM encrypt_jobs
		WHERE token = $1;`

	deleteJobByToken = `DELETE FROM encrypt_jobs
		WHERE token = $1;`

	jobExists = `SELECT EXISTS (
			SELECT 1 FROM encrypt_jobs
			WHERE secret_id = $1 AND user_id = $2
		);`

	deleteJobsOlderThan = `DELETE FROM encrypt_jobs
		WHERE created_at < $1
		RETURNING token;`
)
